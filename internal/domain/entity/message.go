package entity

import "time"

type MessageUser struct {
	ID     string `json:"_id" firestore:"_id"` // sender email
	Name   string `json:"name" firestore:"name"`
	Avatar string `json:"avatar" firestore:"avatar"`
}

// Message is the stored form of a chat message.
type Message struct {
	ID        string      `json:"_id" firestore:"_id"`
	CreatedAt time.Time   `json:"createdAt" firestore:"createdAt"`
	Text      string      `json:"text" firestore:"text"`
	Image     string      `json:"image,omitempty" firestore:"image,omitempty"`
	User      MessageUser `json:"user" firestore:"user"`
	Sent      bool        `json:"sent" firestore:"sent"`
	Received  bool        `json:"received" firestore:"received"`
}

// MessageView is the display model handed to the UI. Image is always
// present, empty when the message carries no picture.
type MessageView struct {
	ID        string      `json:"_id"`
	CreatedAt time.Time   `json:"createdAt"`
	Text      string      `json:"text"`
	Image     string      `json:"image"`
	User      MessageUser `json:"user"`
	Sent      bool        `json:"sent"`
	Received  bool        `json:"received"`
}

func (m Message) View() MessageView {
	return MessageView{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Text:      m.Text,
		Image:     m.Image,
		User:      m.User,
		Sent:      m.Sent,
		Received:  m.Received,
	}
}
