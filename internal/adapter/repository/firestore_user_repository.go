package repository

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/pkg/errors"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

// Create writes users/{email}; the document id is the email address.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.UserProfile) error {
	_, err := r.client.Collection(usersCollection).Doc(user.Email).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user profile", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	doc, err := r.client.Collection(usersCollection).Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user profile", err)
	}

	var user entity.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	if user.Email == "" {
		user.Email = doc.Ref.ID
	}

	return &user, nil
}

func (r *firestoreUserRepository) ListExcept(ctx context.Context, email string) ([]*entity.UserProfile, error) {
	iter := r.client.Collection(usersCollection).Where("email", "!=", email).Documents(ctx)
	defer iter.Stop()

	var users []*entity.UserProfile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list users", err)
		}

		var user entity.UserProfile
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Error parsing user data for %s: %v", doc.Ref.ID, err)
			continue
		}
		if user.Email == "" {
			user.Email = doc.Ref.ID
		}
		users = append(users, &user)
	}

	return users, nil
}

func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, email, name, about string) error {
	_, err := r.client.Collection(usersCollection).Doc(email).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "about", Value: about},
	})
	if err != nil {
		return errors.Internal("Failed to update user profile", err)
	}
	return nil
}

func (r *firestoreUserRepository) SetFollowing(ctx context.Context, email string, following []string) error {
	_, err := r.client.Collection(usersCollection).Doc(email).Update(ctx, []firestore.Update{
		{Path: "following", Value: following},
	})
	if err != nil {
		return errors.Internal("Failed to update following list", err)
	}
	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, email string) error {
	_, err := r.client.Collection(usersCollection).Doc(email).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete user profile", err)
	}
	return nil
}
