package usecase

import (
	"context"
	"sync"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/domain/repository"
	"gogotalk/internal/infrastructure/metrics"
	"gogotalk/pkg/logger"
)

// ChatListReconciler keeps the chat list in sync with the live query for
// the signed-in user and feeds the unread ledger.
type ChatListReconciler struct {
	chatRepo repository.ChatRepository
	ledger   *UnreadLedger
	notifier Notifier

	mu       sync.RWMutex
	chats    []*entity.Chat
	identity *entity.Identity
	loaded   bool
}

func NewChatListReconciler(chatRepo repository.ChatRepository, ledger *UnreadLedger, notifier Notifier) *ChatListReconciler {
	return &ChatListReconciler{
		chatRepo: chatRepo,
		ledger:   ledger,
		notifier: notifier,
	}
}

// Run consumes snapshots until ctx is cancelled or the stream fails.
func (r *ChatListReconciler) Run(ctx context.Context, identity *entity.Identity) error {
	it, err := r.chatRepo.WatchForParticipant(ctx, identity.Participant())
	if err != nil {
		return err
	}
	defer it.Stop()

	logger.Info("Chat list listener started for %s", identity.Email)

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Chat list listener stopped for %s", identity.Email)
				return nil
			}
			logger.Error("Chat list listener failed for %s: %v", identity.Email, err)
			return err
		}

		r.Apply(ctx, identity, snap)
	}
}

// Apply replaces the list with the snapshot in delivered order, then counts
// every modified chat whose newest message came from someone else.
func (r *ChatListReconciler) Apply(ctx context.Context, identity *entity.Identity, snap *repository.ChatListSnapshot) {
	r.mu.Lock()
	r.chats = snap.Chats
	r.identity = identity
	r.loaded = true
	r.mu.Unlock()

	metrics.ChatSnapshots.Inc()

	for _, change := range snap.Changes {
		if change.Kind != repository.ChangeModified {
			continue
		}

		msg := change.Chat.LatestMessage()
		if msg == nil {
			continue
		}
		if msg.User.ID != identity.Email {
			r.ledger.Increment(ctx, change.Chat.ID)
			metrics.UnreadIncrements.Inc()
		}
	}

	if r.notifier != nil {
		r.notifier.Publish(EventChats, r.Summaries(""))
	}
}

// Reset drops the list, used when the user signs out.
func (r *ChatListReconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = nil
	r.identity = nil
	r.loaded = false
}

func (r *ChatListReconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *ChatListReconciler) Chats() []*entity.Chat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Chat, len(r.chats))
	copy(out, r.chats)
	return out
}

func (r *ChatListReconciler) Summaries(query string) []entity.ChatSummary {
	r.mu.RLock()
	chats := r.chats
	identity := r.identity
	r.mu.RUnlock()

	if identity == nil {
		return []entity.ChatSummary{}
	}
	return BuildChatSummaries(chats, identity, r.ledger.Count, query)
}
