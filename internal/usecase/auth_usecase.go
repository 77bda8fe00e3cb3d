package usecase

import (
	"context"
	"strings"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
)

type AuthUseCase struct {
	userRepo   repository.UserRepository
	authClient AuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, authClient AuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	if email == "" || password == "" {
		return nil, errors.BadRequest("Email and password are required", nil)
	}

	identity, err := uc.authClient.SignIn(ctx, email, password)
	if err != nil {
		logger.Warn("Sign-in failed for %s: %v", email, err)
		return nil, errors.Auth("Invalid email or password", err)
	}

	logger.Info("User signed in: %s", identity.Email)
	return identity, nil
}

// SignUp creates the account and its public profile, leaving the user
// signed in.
func (uc *AuthUseCase) SignUp(ctx context.Context, input SignUpInput) (*entity.Identity, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, errors.BadRequest("Please fill in all fields", nil)
	}
	if input.Password != input.ConfirmPassword {
		return nil, errors.BadRequest("Passwords do not match", nil)
	}

	identity, err := uc.authClient.SignUp(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, errors.Auth("Sign up failed", err)
	}

	profile := &entity.UserProfile{
		ID:    identity.UID,
		Email: identity.Email,
		Name:  input.Name,
		About: defaultAbout,
	}
	if err := uc.userRepo.Create(context.WithoutCancel(ctx), profile); err != nil {
		logger.LogWriteError("create_profile", identity.Email, err)
	}

	logger.Info("User signed up: %s", identity.Email)
	return identity, nil
}

func (uc *AuthUseCase) SignOut(ctx context.Context) error {
	return uc.authClient.SignOut(ctx)
}

// DeleteAccount removes the profile document and then the auth user.
func (uc *AuthUseCase) DeleteAccount(ctx context.Context, identity *entity.Identity) error {
	if err := uc.userRepo.Delete(ctx, identity.Email); err != nil {
		logger.LogWriteError("delete_profile", identity.Email, err)
	}

	if err := uc.authClient.DeleteCurrentUser(ctx); err != nil {
		return errors.Auth("Failed to delete account", err)
	}

	logger.Info("Account deleted: %s", identity.Email)
	return nil
}

// Ping checks that the auth backend is reachable.
func (uc *AuthUseCase) Ping(ctx context.Context) error {
	return uc.authClient.TestConnection(ctx)
}
