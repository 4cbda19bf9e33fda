// Package entries stores participant entries. The table's unique constraint
// on qr_code_id is what makes a QR code single-use.
package entries

import (
	"context"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	ExistsByID(ctx context.Context, code string) (bool, error)
	ExistsByQRCode(ctx context.Context, qrCodeID string) (bool, error)
	// Create inserts the entry and fills CreatedAt. Unique violations map to
	// common.ErrDuplicateEntryCode and common.ErrQRCodeAlreadyUsed; an unknown
	// QR code or event maps to common.ErrInvalidQRCode or common.ErrNoActiveEvent.
	Create(ctx context.Context, entry *models.Entry) error
	// GetConfirmation looks up an entry by code and event, joined with the
	// event name. Returns common.ErrorNotFound when no such pair exists.
	GetConfirmation(ctx context.Context, code, eventID string) (*models.EntryConfirmation, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*models.Entry, error)
	// ListWinners returns entries with a prize, most senior prize first.
	ListWinners(ctx context.Context, eventID string) ([]*models.Winner, error)
}
