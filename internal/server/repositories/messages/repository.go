// Package messages keeps the delivery log of participant notifications.
package messages

import (
	"context"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.MessageLog) error
	ListRecent(ctx context.Context, limit, offset int) ([]*models.MessageLog, error)
}
