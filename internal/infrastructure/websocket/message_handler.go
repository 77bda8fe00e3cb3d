package websocket

import (
	"encoding/json"
	"fmt"
)

// Frame types the UI sends.
const (
	MessageTypeOpenChat  = "open_chat"
	MessageTypeCloseChat = "close_chat"
)

// InboundMessage is a frame sent by the UI.
type InboundMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

// ParseInbound decodes a UI frame and checks it names a known action on a chat.
func ParseInbound(raw []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch msg.Type {
	case MessageTypeOpenChat, MessageTypeCloseChat:
	default:
		return nil, fmt.Errorf("unknown frame type %q", msg.Type)
	}

	if msg.ChatID == "" {
		return nil, fmt.Errorf("%s frame without chat_id", msg.Type)
	}

	return &msg, nil
}
