package usecase

import (
	"context"
	"sync"

	"gogotalk/internal/domain/entity"
	"gogotalk/pkg/logger"
)

// SessionEvent tells the UI who is signed in.
type SessionEvent struct {
	Authenticated bool             `json:"authenticated"`
	User          *entity.Identity `json:"user,omitempty"`
}

// ClientCore ties the session to the chat list: the reconciler runs while
// somebody is signed in and stops as soon as they sign out.
type ClientCore struct {
	session    *SessionHolder
	reconciler *ChatListReconciler
	ledger     *UnreadLedger
	notifier   Notifier

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewClientCore(session *SessionHolder, reconciler *ChatListReconciler, ledger *UnreadLedger, notifier Notifier) *ClientCore {
	return &ClientCore{
		session:    session,
		reconciler: reconciler,
		ledger:     ledger,
		notifier:   notifier,
	}
}

// Start hooks the core onto session changes. ctx bounds every reconciler
// run started afterwards.
func (c *ClientCore) Start(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()

	if c.notifier != nil {
		c.ledger.Subscribe(func(badge BadgeView) {
			c.notifier.Publish(EventBadge, badge)
		})
	}

	c.session.Subscribe(c.onSessionChanged)
}

func (c *ClientCore) onSessionChanged(identity *entity.Identity) {
	c.stopReconciler()

	if c.notifier != nil {
		c.notifier.Publish(EventSession, SessionEvent{Authenticated: identity != nil, User: identity})
	}

	if identity == nil {
		c.reconciler.Reset()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithCancel(c.baseCtx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		if err := c.reconciler.Run(ctx, identity); err != nil {
			logger.Error("Chat list reconciler exited: %v", err)
		}
	}()
}

func (c *ClientCore) stopReconciler() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stop ends the running reconciler, if any.
func (c *ClientCore) Stop() {
	c.stopReconciler()
}
