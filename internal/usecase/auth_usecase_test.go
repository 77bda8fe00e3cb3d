package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogotalk/pkg/errors"
)

func TestSignUpCreatesProfile(t *testing.T) {
	authClient := newFakeAuthClient()
	users := newFakeUserRepo()
	uc := NewAuthUseCase(users, authClient)
	ctx := context.Background()

	identity, err := uc.SignUp(ctx, SignUpInput{
		Name:            "Ana Lima",
		Email:           "ana@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", identity.Email)
	assert.Equal(t, identity, authClient.CurrentUser())

	profile, err := users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, identity.UID, profile.ID)
	assert.Equal(t, "Ana Lima", profile.Name)
	assert.Equal(t, "Available", profile.About)
}

func TestSignUpValidation(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserRepo(), newFakeAuthClient())
	ctx := context.Background()

	_, err := uc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "ana@x.com", Password: "a", ConfirmPassword: "b"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.SignUp(ctx, SignUpInput{Email: "ana@x.com", Password: "a", ConfirmPassword: "a"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSignUpAuthFailure(t *testing.T) {
	authClient := newFakeAuthClient()
	authClient.signUpErr = stderrors.New("EMAIL_EXISTS")
	uc := NewAuthUseCase(newFakeUserRepo(), authClient)

	_, err := uc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "ana@x.com", Password: "a", ConfirmPassword: "a"})
	assert.True(t, errors.Is(err, "AUTH_ERROR"))
}

func TestSignInAndOut(t *testing.T) {
	authClient := newFakeAuthClient()
	authClient.passwords["ana@x.com"] = "secret1"
	uc := NewAuthUseCase(newFakeUserRepo(), authClient)
	ctx := context.Background()

	_, err := uc.SignIn(ctx, "ana@x.com", "wrong")
	assert.True(t, errors.Is(err, "AUTH_ERROR"))

	identity, err := uc.SignIn(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", identity.Email)

	require.NoError(t, uc.SignOut(ctx))
	assert.Nil(t, authClient.CurrentUser())
}

func TestDeleteAccount(t *testing.T) {
	authClient := newFakeAuthClient()
	users := newFakeUserRepo()
	uc := NewAuthUseCase(users, authClient)
	ctx := context.Background()

	identity, err := uc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "ana@x.com", Password: "a", ConfirmPassword: "a"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteAccount(ctx, identity))

	assert.Nil(t, authClient.CurrentUser())
	_, err = users.GetByEmail(ctx, "ana@x.com")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
