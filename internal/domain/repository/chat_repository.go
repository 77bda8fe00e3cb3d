package repository

import (
	"context"

	"gogotalk/internal/domain/entity"
)

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

type ChatChange struct {
	Kind ChangeKind
	Chat *entity.Chat
}

// ChatListSnapshot is one delivery of a live chat query: the full ordered
// result plus the per-document changes since the previous delivery.
type ChatListSnapshot struct {
	Chats   []*entity.Chat
	Changes []ChatChange
}

// ChatListIterator yields snapshots until Stop is called or its context ends.
type ChatListIterator interface {
	Next() (*ChatListSnapshot, error)
	Stop()
}

// ChatIterator yields the current state of one chat document. A nil chat
// means the document no longer exists.
type ChatIterator interface {
	Next() (*entity.Chat, error)
	Stop()
}

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// FindDirect returns the two-person chat between self and otherEmail.
	FindDirect(ctx context.Context, self entity.Participant, otherEmail string) (*entity.Chat, error)
	Delete(ctx context.Context, id string) error

	// PrependMessage puts msg at the head of the message list and bumps
	// lastUpdated in a single atomic read-modify-write.
	PrependMessage(ctx context.Context, chatID string, msg entity.Message, lastUpdated int64) error
	SetParticipants(ctx context.Context, chatID string, users []entity.Participant) error
	ClearMessages(ctx context.Context, chatID string, lastUpdated int64) error

	WatchForParticipant(ctx context.Context, p entity.Participant) (ChatListIterator, error)
	WatchByID(ctx context.Context, chatID string) (ChatIterator, error)
}
