package qrcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, code *models.QRCode) error {
	query := `
		INSERT INTO qr_codes (id, created_by, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	var createdBy any
	if code.CreatedBy != "" {
		createdBy = code.CreatedBy
	}
	if err := r.db.QueryRowContext(ctx, query, code.ID, createdBy, code.ExpiresAt).Scan(&code.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.QRCode, error) {
	query := `
		SELECT id, created_by, created_at, expires_at
		FROM qr_codes
		WHERE id = $1
	`
	var createdBy sql.NullString
	code := &models.QRCode{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&code.ID, &createdBy, &code.CreatedAt, &code.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	code.CreatedBy = createdBy.String
	return code, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.QRCode, error) {
	query := `
		SELECT q.id, q.created_by, q.created_at, q.expires_at,
			EXISTS (SELECT 1 FROM entries e WHERE e.qr_code_id = q.id) AS used
		FROM qr_codes q
		ORDER BY q.created_at DESC, q.id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.QRCode
	for rows.Next() {
		var createdBy sql.NullString
		code := &models.QRCode{}
		if err := rows.Scan(&code.ID, &createdBy, &code.CreatedAt, &code.ExpiresAt, &code.Used); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		code.CreatedBy = createdBy.String
		result = append(result, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
