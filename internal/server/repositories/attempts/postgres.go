package attempts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Attempt) error {
	query := `
		INSERT INTO entry_attempts (ip_address, user_agent, attempt_type, qr_code_id, success, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.IPAddress, a.UserAgent, a.Type, a.QRCodeID, a.Success, a.FailureReason).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FailureStats(ctx context.Context, ip, attemptType string, since time.Time) (*models.FailureStats, error) {
	query := `
		SELECT COUNT(*), MIN(created_at)
		FROM entry_attempts
		WHERE ip_address = $1
		  AND attempt_type = $2
		  AND success = FALSE
		  AND created_at >= $3
	`
	var oldest sql.NullTime
	stats := &models.FailureStats{}
	if err := r.db.QueryRowContext(ctx, query, ip, attemptType, since).Scan(&stats.Count, &oldest); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	stats.Oldest = oldest.Time
	return stats, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.Attempt, error) {
	query := `
		SELECT id, ip_address, user_agent, attempt_type, qr_code_id, success, failure_reason, created_at
		FROM entry_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Attempt
	for rows.Next() {
		a := &models.Attempt{}
		if err := rows.Scan(&a.ID, &a.IPAddress, &a.UserAgent, &a.Type, &a.QRCodeID, &a.Success, &a.FailureReason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
