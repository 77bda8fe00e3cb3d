package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogotalk/internal/domain/entity"
	"gogotalk/pkg/utils"
)

func TestToggleFollowing(t *testing.T) {
	start := []string{"a@x.com"}

	added := toggleFollowing(start, "b@x.com")
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, added)

	removed := toggleFollowing(added, "a@x.com")
	assert.Equal(t, []string{"b@x.com"}, removed)

	assert.Equal(t, []string{"a@x.com"}, start)
}

func TestContactListTabsAndSearch(t *testing.T) {
	repo := newFakeUserRepo(
		&entity.UserProfile{Email: me.Email, Name: "Me", Following: []string{"bob@x.com"}},
		&entity.UserProfile{Email: "bob@x.com", Name: "Bob Stone", About: "climbing"},
		&entity.UserProfile{Email: "cy@x.com", Name: "Cy"},
	)
	uc := NewContactUseCase(repo)
	ctx := context.Background()

	all, total, err := uc.List(ctx, me, ContactListInput{Tab: ContactTabAll})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	assert.True(t, all[0].IsFollowing)
	assert.False(t, all[1].IsFollowing)
	assert.Equal(t, "Available", all[1].About)

	following, total, err := uc.List(ctx, me, ContactListInput{Tab: ContactTabFollowing})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "bob@x.com", following[0].Email)

	found, _, err := uc.List(ctx, me, ContactListInput{Query: "CY@"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cy", found[0].Name)
}

func TestContactListPaginates(t *testing.T) {
	profiles := []*entity.UserProfile{{Email: me.Email, Name: "Me"}}
	for i := 0; i < 45; i++ {
		profiles = append(profiles, &entity.UserProfile{Email: fmt.Sprintf("u%02d@x.com", i), Name: fmt.Sprintf("User %02d", i)})
	}
	uc := NewContactUseCase(newFakeUserRepo(profiles...))

	first, total, err := uc.List(context.Background(), me, ContactListInput{})
	require.NoError(t, err)
	assert.Equal(t, 45, total)
	assert.Len(t, first, utils.DefaultPageSize)

	last, _, err := uc.List(context.Background(), me, ContactListInput{
		Pagination: utils.PaginationParams{Page: 3, PageSize: 20, Offset: 40},
	})
	require.NoError(t, err)
	assert.Len(t, last, 5)
}

func TestToggleFollowUpdatesProfile(t *testing.T) {
	repo := newFakeUserRepo(
		&entity.UserProfile{Email: me.Email, Following: []string{"a@x.com"}},
		&entity.UserProfile{Email: "a@x.com"},
		&entity.UserProfile{Email: "b@x.com"},
	)
	uc := NewContactUseCase(repo)
	ctx := context.Background()

	list, following, err := uc.ToggleFollow(ctx, me, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, list)

	list, following, err = uc.ToggleFollow(ctx, me, "a@x.com")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, []string{"b@x.com"}, list)

	stored, err := repo.GetByEmail(ctx, me.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, stored.Following)
}

func TestToggleFollowWriteFailureKeepsLocalState(t *testing.T) {
	repo := newFakeUserRepo(&entity.UserProfile{Email: me.Email, Following: []string{"a@x.com"}})
	repo.writeErr = stderrors.New("offline")
	uc := NewContactUseCase(repo)

	list, following, err := uc.ToggleFollow(context.Background(), me, "b@x.com")
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, list)
	assert.Equal(t, list, uc.cachedFollowing(me.Email))
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	uc := NewContactUseCase(newFakeUserRepo())
	_, _, err := uc.ToggleFollow(context.Background(), me, me.Email)
	assert.Error(t, err)
}
