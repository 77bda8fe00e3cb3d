package entity

type Participant struct {
	Email           string `json:"email" firestore:"email"`
	Name            string `json:"name" firestore:"name"`
	DeletedFromChat bool   `json:"deleted_from_chat" firestore:"deletedFromChat"`
}

// Chat mirrors a document in the "chats" collection. Messages are stored
// most-recent-first and are the only record of the chat's content.
type Chat struct {
	ID          string        `json:"id" firestore:"-"`
	Users       []Participant `json:"users" firestore:"users"`
	Messages    []Message     `json:"messages" firestore:"messages"`
	GroupName   string        `json:"group_name,omitempty" firestore:"groupName,omitempty"`
	GroupAdmins []string      `json:"group_admins,omitempty" firestore:"groupAdmins,omitempty"`
	LastUpdated int64         `json:"last_updated" firestore:"lastUpdated"` // epoch millis
}

func (c *Chat) IsGroup() bool {
	return c.GroupName != ""
}

// LatestMessage returns the most recent message, or nil for an empty chat.
func (c *Chat) LatestMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[0]
}

func (c *Chat) Participant(email string) (Participant, bool) {
	for _, u := range c.Users {
		if u.Email == email {
			return u, true
		}
	}
	return Participant{}, false
}

// AllLeft reports whether every participant has removed the chat on their side.
func (c *Chat) AllLeft() bool {
	if len(c.Users) == 0 {
		return false
	}
	for _, u := range c.Users {
		if !u.DeletedFromChat {
			return false
		}
	}
	return true
}
