package entity

// ChatSummary is one row of the chat list.
type ChatSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	Time        string `json:"time"`
	AvatarColor string `json:"avatar_color"`
	Initials    string `json:"initials"`
	IsGroup     bool   `json:"is_group"`
	Unread      int    `json:"unread"`
	LastUpdated int64  `json:"last_updated"`
}

// ChatInfo describes a chat's members. Users holds each email once.
type ChatInfo struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	GroupName string        `json:"group_name,omitempty"`
	IsGroup   bool          `json:"is_group"`
	Admins    []string      `json:"admins,omitempty"`
	Users     []Participant `json:"users"`
}
