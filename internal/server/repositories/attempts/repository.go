// Package attempts is the append-only audit trail of QR validations and
// entry submissions. It is also the source of rate-limit decisions.
package attempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	// FailureStats counts failed attempts of the given type from ip created
	// at or after since, along with the oldest such attempt.
	FailureStats(ctx context.Context, ip, attemptType string, since time.Time) (*models.FailureStats, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*models.Attempt, error)
}
