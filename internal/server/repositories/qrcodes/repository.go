// Package qrcodes stores minted QR tokens. A code never carries a used flag
// of its own; it is consumed once an entry references it.
package qrcodes

import (
	"context"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	// Create inserts one code and fills CreatedAt.
	Create(ctx context.Context, code *models.QRCode) error
	// GetByID returns common.ErrorNotFound for unknown tokens.
	GetByID(ctx context.Context, id string) (*models.QRCode, error)
	// List returns codes newest first with the derived Used flag.
	List(ctx context.Context, limit, offset int) ([]*models.QRCode, error)
}
