package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.MessageLog) error {
	query := `
		INSERT INTO message_logs (entry_id, recipient, body, status, error)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, m.EntryID, m.Recipient, m.Body, m.Status, m.Error).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.MessageLog, error) {
	query := `
		SELECT id, entry_id, recipient, body, status, error, created_at
		FROM message_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MessageLog
	for rows.Next() {
		m := &models.MessageLog{}
		if err := rows.Scan(&m.ID, &m.EntryID, &m.Recipient, &m.Body, &m.Status, &m.Error, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
