package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Page clamps a requested limit and offset to sane values.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// DashboardService serves the read-only admin listings.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m}
}

// ListEntries returns an event's entries, newest first. An unknown event
// yields common.ErrorNotFound.
func (s *DashboardService) ListEntries(ctx context.Context, eventID string, limit, offset int) ([]*models.Entry, error) {
	if _, err := s.repomanager.Events(s.db).GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	limit, offset = Page(limit, offset)
	return s.repomanager.Entries(s.db).ListByEvent(ctx, eventID, limit, offset)
}

// ListWinners returns the entries of an event that were awarded a prize,
// most senior prize first.
func (s *DashboardService) ListWinners(ctx context.Context, eventID string) ([]*models.Winner, error) {
	if _, err := s.repomanager.Events(s.db).GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repomanager.Entries(s.db).ListWinners(ctx, eventID)
}

func (s *DashboardService) ListAttempts(ctx context.Context, limit, offset int) ([]*models.Attempt, error) {
	limit, offset = Page(limit, offset)
	return s.repomanager.Attempts(s.db).ListRecent(ctx, limit, offset)
}
