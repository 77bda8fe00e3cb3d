package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
	"gogotalk/pkg/utils"
)

const MaxAboutLength = 150

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

type ProfileView struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	About       string `json:"about"`
	AvatarColor string `json:"avatar_color"`
	Initials    string `json:"initials"`
}

// GetProfile falls back to the auth identity when no profile document exists.
func (uc *UserUseCase) GetProfile(ctx context.Context, identity *entity.Identity) (*ProfileView, error) {
	profile, err := uc.userRepo.GetByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		profile = &entity.UserProfile{
			ID:    identity.UID,
			Email: identity.Email,
			Name:  identity.DisplayName,
		}
	}

	return profileView(profile), nil
}

// UpdateProfile saves name and bio. The write is not awaited by the
// caller's context and a failure is only logged.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, identity *entity.Identity, name, about string) (*ProfileView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}
	if utf8.RuneCountInString(about) > MaxAboutLength {
		return nil, errors.BadRequest("Bio is too long", nil)
	}

	if err := uc.userRepo.UpdateProfile(context.WithoutCancel(ctx), identity.Email, name, about); err != nil {
		logger.LogWriteError("update_profile", identity.Email, err)
	}

	return profileView(&entity.UserProfile{
		ID:    identity.UID,
		Email: identity.Email,
		Name:  name,
		About: about,
	}), nil
}

func profileView(p *entity.UserProfile) *ProfileView {
	about := p.About
	if about == "" {
		about = defaultAbout
	}
	return &ProfileView{
		Email:       p.Email,
		Name:        p.Name,
		About:       about,
		AvatarColor: utils.AvatarColor(p.Name),
		Initials:    utils.Initials(p.Name, p.Email),
	}
}
