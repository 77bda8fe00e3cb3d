package usecase

import (
	"sync"

	"gogotalk/internal/domain/entity"
)

// SessionHolder keeps the latest identity reported by the auth client.
// It subscribes once and lives for the whole process.
type SessionHolder struct {
	mu          sync.RWMutex
	current     *entity.Identity
	subscribers []func(identity *entity.Identity)
}

func NewSessionHolder(authClient AuthClient) *SessionHolder {
	h := &SessionHolder{}
	authClient.OnAuthStateChanged(h.set)
	return h
}

// Current returns the signed-in identity, or nil.
func (h *SessionHolder) Current() *entity.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers fn for every later change and calls it once with
// the current state.
func (h *SessionHolder) Subscribe(fn func(identity *entity.Identity)) {
	h.mu.Lock()
	h.subscribers = append(h.subscribers, fn)
	current := h.current
	h.mu.Unlock()

	fn(current)
}

func (h *SessionHolder) set(identity *entity.Identity) {
	h.mu.Lock()
	h.current = identity
	subscribers := make([]func(*entity.Identity), len(h.subscribers))
	copy(subscribers, h.subscribers)
	h.mu.Unlock()

	for _, fn := range subscribers {
		fn(identity)
	}
}
