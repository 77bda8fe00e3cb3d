package entity

// UserProfile mirrors users/{email}. Only its owner mutates it.
type UserProfile struct {
	ID        string   `json:"id" firestore:"id"`
	Email     string   `json:"email" firestore:"email"`
	Name      string   `json:"name" firestore:"name"`
	About     string   `json:"about,omitempty" firestore:"about,omitempty"`
	Following []string `json:"following,omitempty" firestore:"following,omitempty"`
}

// ContactView combines a fetched profile with the follow relation of the
// current user, computed when the list is built.
type ContactView struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	About       string `json:"about"`
	AvatarColor string `json:"avatar_color"`
	Initials    string `json:"initials"`
	IsFollowing bool   `json:"is_following"`
}
