package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mutex   sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow consumes a token for key if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Forget drops the bucket for key, e.g. when a connection closes.
func (rl *RateLimiter) Forget(key string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	delete(rl.buckets, key)
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[key] = b
	}
	return b
}

func (rl *RateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
