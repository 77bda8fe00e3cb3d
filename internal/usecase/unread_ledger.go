package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"gogotalk/internal/domain/repository"
	"gogotalk/internal/infrastructure/metrics"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/logger"
)

const unreadLedgerKey = "newMessages"

// BadgeView is what the tab badge renders. Label is empty when nothing is unread.
type BadgeView struct {
	Sum   int    `json:"sum"`
	Label string `json:"label"`
}

// UnreadLedger counts unseen incoming messages per chat and mirrors the
// counts to the device-local store.
type UnreadLedger struct {
	store repository.KeyValueStore

	mu          sync.Mutex
	counts      map[string]int
	subscribers []func(BadgeView)
}

func NewUnreadLedger(store repository.KeyValueStore) *UnreadLedger {
	return &UnreadLedger{
		store:  store,
		counts: make(map[string]int),
	}
}

// Load replaces the in-memory counts with the persisted ones. A read
// failure leaves the ledger empty and usable.
func (l *UnreadLedger) Load(ctx context.Context) error {
	raw, ok, err := l.store.Get(ctx, unreadLedgerKey)
	if err != nil {
		metrics.LocalStorageErrors.Inc()
		logger.Error("Failed to load unread ledger: %v", err)
		return errors.LocalStorage("Failed to load unread messages", err)
	}

	counts := make(map[string]int)
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			metrics.LocalStorageErrors.Inc()
			logger.Error("Failed to parse unread ledger: %v", err)
			return errors.LocalStorage("Failed to parse unread messages", err)
		}
	}

	l.mu.Lock()
	l.counts = counts
	view := badgeFor(sumCounts(counts))
	subscribers := l.copySubscribers()
	l.mu.Unlock()

	metrics.UnreadBadge.Set(float64(view.Sum))
	notifyBadge(subscribers, view)
	return nil
}

func (l *UnreadLedger) Increment(ctx context.Context, chatID string) {
	l.mutate(ctx, func(counts map[string]int) {
		counts[chatID]++
	})
}

func (l *UnreadLedger) Reset(ctx context.Context, chatID string) {
	l.mutate(ctx, func(counts map[string]int) {
		counts[chatID] = 0
	})
}

func (l *UnreadLedger) Count(chatID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[chatID]
}

func (l *UnreadLedger) Sum() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sumCounts(l.counts)
}

func (l *UnreadLedger) Badge() BadgeView {
	return badgeFor(l.Sum())
}

func (l *UnreadLedger) Snapshot() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Subscribe registers fn to receive the badge after every mutation.
func (l *UnreadLedger) Subscribe(fn func(BadgeView)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// mutate runs the whole read-merge-persist-resum cycle under the lock so
// concurrent updates never overwrite each other.
func (l *UnreadLedger) mutate(ctx context.Context, apply func(map[string]int)) {
	l.mu.Lock()
	apply(l.counts)

	if err := l.persist(ctx); err != nil {
		metrics.LocalStorageErrors.Inc()
		logger.Error("Failed to persist unread ledger: %v", err)
	}

	view := badgeFor(sumCounts(l.counts))
	subscribers := l.copySubscribers()
	l.mu.Unlock()

	metrics.UnreadBadge.Set(float64(view.Sum))
	notifyBadge(subscribers, view)
}

func (l *UnreadLedger) persist(ctx context.Context) error {
	data, err := json.Marshal(l.counts)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, unreadLedgerKey, string(data))
}

func (l *UnreadLedger) copySubscribers() []func(BadgeView) {
	out := make([]func(BadgeView), len(l.subscribers))
	copy(out, l.subscribers)
	return out
}

func notifyBadge(subscribers []func(BadgeView), view BadgeView) {
	for _, fn := range subscribers {
		fn(view)
	}
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func badgeFor(sum int) BadgeView {
	view := BadgeView{Sum: sum}
	if sum > 0 {
		view.Label = strconv.Itoa(sum)
	}
	return view
}
