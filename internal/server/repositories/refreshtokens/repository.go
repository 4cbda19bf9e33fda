// Package refreshtokens declares the repository contract for admin refresh
// tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for adminID valid until expiresAt.
	Create(ctx context.Context, adminID string, token string, expiresAt time.Time) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
