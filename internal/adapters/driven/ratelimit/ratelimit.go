// Package ratelimit paces calls to AI providers and backs off after the
// provider reports rate limiting.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// DefaultBackoff is how long calls pause after a 429 with no better hint.
const DefaultBackoff = 10 * time.Second

// Config holds rate limiting configuration for a provider.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables pacing.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 1).
	BurstSize int

	// Backoff is the pause after a rate limit error (default: 10s).
	Backoff time.Duration
}

// Limiter provides rate limiting for provider requests.
// It uses a token bucket with a backoff window after 429 responses.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
	now     func() time.Time
}

// NewLimiter creates a limiter from cfg.
func NewLimiter(cfg Config) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, cfg.BurstSize),
		backoff: cfg.Backoff,
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period. A non-positive retryAfter
// uses the configured backoff.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = l.backoff
	}
	l.retryAt = l.now().Add(retryAfter)
}

// Allow checks if a request can be made immediately without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// observe records a backoff when err reports rate limiting.
func (l *Limiter) observe(err error) {
	if errors.Is(err, domain.ErrRateLimited) {
		l.RecordRateLimitError(0)
	}
}
