package firebase

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"gogotalk/internal/domain/entity"
)

// AuthStateListener is called with the new identity, or nil after sign-out.
type AuthStateListener = func(identity *entity.Identity)

// FirebaseAuthClient signs the device user in and out. Admin operations go
// through the Admin SDK, password sign-in through the Identity Toolkit API
// because the Admin SDK cannot check passwords.
type FirebaseAuthClient struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service

	mu        sync.RWMutex
	current   *entity.Identity
	listeners []AuthStateListener
}

func NewFirebaseAuthClient(ctx context.Context, client *auth.Client, apiKey string) (*FirebaseAuthClient, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %v", err)
	}

	return &FirebaseAuthClient{
		client:  client,
		toolkit: toolkit,
	}, nil
}

// OnAuthStateChanged registers l and immediately delivers the current state.
func (f *FirebaseAuthClient) OnAuthStateChanged(l AuthStateListener) {
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	current := f.current
	f.mu.Unlock()

	l(current)
}

func (f *FirebaseAuthClient) CurrentUser() *entity.Identity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

func (f *FirebaseAuthClient) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	identity := &entity.Identity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}
	f.setCurrent(identity)
	return identity, nil
}

// SignUp creates the account with its display name set, then signs in.
func (f *FirebaseAuthClient) SignUp(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	if _, err := f.client.CreateUser(ctx, params); err != nil {
		return nil, err
	}

	return f.SignIn(ctx, email, password)
}

func (f *FirebaseAuthClient) SignOut(ctx context.Context) error {
	f.setCurrent(nil)
	return nil
}

func (f *FirebaseAuthClient) DeleteCurrentUser(ctx context.Context) error {
	current := f.CurrentUser()
	if current == nil {
		return fmt.Errorf("no signed-in user")
	}

	if err := f.client.DeleteUser(ctx, current.UID); err != nil {
		return err
	}

	f.setCurrent(nil)
	return nil
}

func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	iter := f.client.Users(ctx, "")
	_, err := iter.Next()
	if err != nil && err != iterator.Done {
		return err
	}
	return nil
}

func (f *FirebaseAuthClient) setCurrent(identity *entity.Identity) {
	f.mu.Lock()
	f.current = identity
	listeners := make([]AuthStateListener, len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l(identity)
	}
}
