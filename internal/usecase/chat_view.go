package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"gogotalk/internal/domain/entity"
	"gogotalk/pkg/utils"
)

const (
	noChatName         = "~ No Name or Email ~"
	emptyChatSubtitle  = "No messages yet"
	imageSubtitle      = "sent an image"
	subtitlePreviewLen = 20
	chatTimeLayout     = "3:04 PM"
)

// ChatName is the title shown for a chat from the point of view of self.
func ChatName(chat *entity.Chat, self *entity.Identity) string {
	if chat.GroupName != "" {
		return chat.GroupName
	}

	other, ok := otherParticipant(chat, self)
	if !ok {
		return noChatName
	}
	if other.Name != "" {
		return other.Name
	}
	if other.Email != "" {
		return other.Email
	}
	return noChatName
}

func otherParticipant(chat *entity.Chat, self *entity.Identity) (entity.Participant, bool) {
	for _, u := range chat.Users {
		if u.Email != self.Email {
			return u, true
		}
	}
	if len(chat.Users) > 0 {
		return chat.Users[0], true
	}
	return entity.Participant{}, false
}

// ChatSubtitle previews the latest message, e.g. "You: hello".
func ChatSubtitle(chat *entity.Chat, self *entity.Identity) string {
	msg := chat.LatestMessage()
	if msg == nil {
		return emptyChatSubtitle
	}

	sender := "You"
	if msg.User.ID != self.Email {
		sender = firstName(msg.User.Name)
	}

	var body string
	switch {
	case msg.Image != "":
		body = imageSubtitle
	case utf8.RuneCountInString(msg.Text) > subtitlePreviewLen:
		body = string([]rune(msg.Text)[:subtitlePreviewLen]) + "..."
	default:
		body = msg.Text
	}

	return sender + ": " + body
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func ChatTimeLabel(lastUpdated int64) string {
	if lastUpdated == 0 {
		return ""
	}
	return time.UnixMilli(lastUpdated).Format(chatTimeLayout)
}

// BuildChatSummaries turns chats into list rows, keeping their order. An
// empty query keeps every chat; otherwise the chat name must contain it,
// ignoring case.
func BuildChatSummaries(chats []*entity.Chat, self *entity.Identity, unread func(chatID string) int, query string) []entity.ChatSummary {
	query = strings.ToLower(strings.TrimSpace(query))

	summaries := make([]entity.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		name := ChatName(chat, self)
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}

		summaries = append(summaries, entity.ChatSummary{
			ID:          chat.ID,
			Name:        name,
			Subtitle:    ChatSubtitle(chat, self),
			Time:        ChatTimeLabel(chat.LastUpdated),
			AvatarColor: utils.AvatarColor(name),
			Initials:    utils.Initials(name, name),
			IsGroup:     chat.IsGroup(),
			Unread:      unread(chat.ID),
			LastUpdated: chat.LastUpdated,
		})
	}

	return summaries
}
