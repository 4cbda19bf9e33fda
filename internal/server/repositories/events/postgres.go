package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, name, description, start_date, end_date, created_by, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	var createdBy sql.NullString
	e := &models.Event{}
	if err := s.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate, &createdBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.CreatedBy = createdBy.String
	return e, nil
}

func (r *PostgresRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, description, start_date, end_date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	var createdBy any
	if event.CreatedBy != "" {
		createdBy = event.CreatedBy
	}
	err := r.db.QueryRowContext(ctx, query, event.Name, event.Description, event.StartDate, event.EndDate, createdBy).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_date <= $2 AND end_date >= $1
		ORDER BY start_date
	`
	return r.queryEvents(ctx, query, start, end)
}

func (r *PostgresRepository) FindActive(ctx context.Context, now time.Time) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_date <= $1 AND end_date >= $1
		ORDER BY start_date
		LIMIT 1
	`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if !common.IsUUID(id) {
		return nil, common.ErrorNotFound
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_date DESC
	`
	return r.queryEvents(ctx, query)
}
