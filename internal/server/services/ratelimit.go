package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

// RateLimit is the outcome of a rate-limit check. RetryAfter is set only
// when Limited.
type RateLimit struct {
	Limited    bool
	RetryAfter time.Time
}

// RateLimiter counts failed QR validations per IP over a sliding window.
// It only reads; outcomes are recorded by the AttemptLogger. Reads and
// writes are not atomic, so a burst may briefly exceed the limit.
type RateLimiter struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	window      time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewRateLimiter(db *sql.DB, m repomanager.RepositoryManager, window time.Duration, maxAttempts int) *RateLimiter {
	return &RateLimiter{
		db:          db,
		repomanager: m,
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// CheckRateLimit reports whether ip has reached the failure cap. When it
// has, RetryAfter is the moment the oldest counted failure leaves the window.
func (r *RateLimiter) CheckRateLimit(ctx context.Context, ip string) (*RateLimit, error) {
	since := r.now().Add(-r.window)

	stats, err := r.repomanager.Attempts(r.db).FailureStats(ctx, ip, common.AttemptQRValidation, since)
	if err != nil {
		return nil, fmt.Errorf("rate limit lookup: %w", err)
	}

	if stats.Count < r.maxAttempts {
		return &RateLimit{}, nil
	}
	return &RateLimit{Limited: true, RetryAfter: stats.Oldest.Add(r.window)}, nil
}
