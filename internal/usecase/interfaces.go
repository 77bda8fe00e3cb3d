package usecase

import (
	"context"

	"gogotalk/internal/domain/entity"
)

type AuthClient interface {
	OnAuthStateChanged(l func(identity *entity.Identity))
	CurrentUser() *entity.Identity
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error)
	SignOut(ctx context.Context) error
	DeleteCurrentUser(ctx context.Context) error
	TestConnection(ctx context.Context) error
}

// Notifier pushes events to connected UI clients.
type Notifier interface {
	Publish(eventType string, data interface{})
}

const (
	EventSession  = "session"
	EventChats    = "chats"
	EventBadge    = "badge"
	EventMessages = "messages"
	EventUpload   = "upload"
)
