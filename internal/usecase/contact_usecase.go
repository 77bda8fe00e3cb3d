package usecase

import (
	"context"
	"strings"
	"sync"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
	"gogotalk/pkg/utils"
)

const (
	ContactTabAll       = "all"
	ContactTabFollowing = "following"

	defaultAbout = "Available"
)

type ContactUseCase struct {
	userRepo repository.UserRepository

	mu        sync.Mutex
	following map[string][]string
}

func NewContactUseCase(userRepo repository.UserRepository) *ContactUseCase {
	return &ContactUseCase{
		userRepo:  userRepo,
		following: make(map[string][]string),
	}
}

type ContactListInput struct {
	Tab        string
	Query      string
	Pagination utils.PaginationParams
}

// List returns one page of contacts and the number of contacts matching
// the tab and query.
func (uc *ContactUseCase) List(ctx context.Context, identity *entity.Identity, input ContactListInput) ([]entity.ContactView, int, error) {
	following, err := uc.loadFollowing(ctx, identity.Email)
	if err != nil {
		return []entity.ContactView{}, 0, err
	}

	users, err := uc.userRepo.ListExcept(ctx, identity.Email)
	if err != nil {
		return []entity.ContactView{}, 0, err
	}

	views := buildContactViews(users, following, input.Tab, input.Query)
	p := input.Pagination
	if p.PageSize <= 0 {
		p = utils.PaginationParams{Page: 1, PageSize: utils.DefaultPageSize}
	}
	page := utils.Page(views, p)
	return page, len(views), nil
}

// ToggleFollow adds target to the following list when absent and removes
// it otherwise. The local list changes immediately; a failed write is only
// logged.
func (uc *ContactUseCase) ToggleFollow(ctx context.Context, identity *entity.Identity, target string) ([]string, bool, error) {
	target = strings.TrimSpace(target)
	if target == "" || target == identity.Email {
		return nil, false, errors.BadRequest("Invalid contact", nil)
	}

	current, err := uc.loadFollowing(ctx, identity.Email)
	if err != nil {
		logger.Warn("Using cached following list for %s: %v", identity.Email, err)
		current = uc.cachedFollowing(identity.Email)
	}

	updated := toggleFollowing(current, target)

	uc.mu.Lock()
	uc.following[identity.Email] = updated
	uc.mu.Unlock()

	if err := uc.userRepo.SetFollowing(context.WithoutCancel(ctx), identity.Email, updated); err != nil {
		logger.LogWriteError("toggle_follow", identity.Email, err)
	}

	return updated, containsEmail(updated, target), nil
}

func (uc *ContactUseCase) loadFollowing(ctx context.Context, email string) ([]string, error) {
	me, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return []string{}, nil
		}
		return nil, err
	}

	uc.mu.Lock()
	uc.following[email] = me.Following
	uc.mu.Unlock()

	return me.Following, nil
}

func (uc *ContactUseCase) cachedFollowing(email string) []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.following[email]
}

// toggleFollowing never mutates following.
func toggleFollowing(following []string, target string) []string {
	out := make([]string, 0, len(following)+1)
	found := false
	for _, email := range following {
		if email == target {
			found = true
			continue
		}
		out = append(out, email)
	}
	if !found {
		out = append(out, target)
	}
	return out
}

func buildContactViews(users []*entity.UserProfile, following []string, tab, query string) []entity.ContactView {
	query = strings.ToLower(strings.TrimSpace(query))

	views := make([]entity.ContactView, 0, len(users))
	for _, u := range users {
		isFollowing := containsEmail(following, u.Email)
		if tab == ContactTabFollowing && !isFollowing {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Email), query) {
			continue
		}

		about := u.About
		if about == "" {
			about = defaultAbout
		}

		views = append(views, entity.ContactView{
			Email:       u.Email,
			Name:        u.Name,
			About:       about,
			AvatarColor: utils.AvatarColor(u.Name),
			Initials:    utils.Initials(u.Name, u.Email),
			IsFollowing: isFollowing,
		})
	}
	return views
}

func containsEmail(list []string, email string) bool {
	for _, e := range list {
		if e == email {
			return true
		}
	}
	return false
}
