package entity

// Identity is the signed-in user as reported by the auth service.
type Identity struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
}

// Participant is the chat membership record for this identity as used by
// the chat list query.
func (i *Identity) Participant() Participant {
	return Participant{Email: i.Email, Name: i.DisplayName}
}
