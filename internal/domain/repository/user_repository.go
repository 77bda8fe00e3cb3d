package repository

import (
	"context"

	"gogotalk/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.UserProfile) error
	GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
	ListExcept(ctx context.Context, email string) ([]*entity.UserProfile, error)
	UpdateProfile(ctx context.Context, email, name, about string) error
	SetFollowing(ctx context.Context, email string, following []string) error
	Delete(ctx context.Context, email string) error
}
