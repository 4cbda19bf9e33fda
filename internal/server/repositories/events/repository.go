// Package events stores giveaway events and their prizes.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type Repository interface {
	// Create inserts the event and fills ID and CreatedAt.
	Create(ctx context.Context, event *models.Event) error
	// FindOverlapping returns events whose [start, end] intersects the given
	// inclusive interval.
	FindOverlapping(ctx context.Context, start, end time.Time) ([]*models.Event, error)
	// FindActive returns the earliest-starting event containing now, or
	// common.ErrorNotFound.
	FindActive(ctx context.Context, now time.Time) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	// List returns all events, most recent start first.
	List(ctx context.Context) ([]*models.Event, error)

	CreatePrize(ctx context.Context, prize *models.Prize) error
	GetPrize(ctx context.Context, id string) (*models.Prize, error)
	// ListPrizes returns an event's prizes ordered by seniority.
	ListPrizes(ctx context.Context, eventID string) ([]*models.Prize, error)
	SetPrizeImage(ctx context.Context, prizeID, key string) error
}
