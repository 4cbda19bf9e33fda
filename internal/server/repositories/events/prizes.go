package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

func (r *PostgresRepository) CreatePrize(ctx context.Context, prize *models.Prize) error {
	query := `
		INSERT INTO prizes (event_id, name, description, seniority_index)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, prize.EventID, prize.Name, prize.Description, prize.SeniorityIndex).Scan(&prize.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPrize(ctx context.Context, id string) (*models.Prize, error) {
	if !common.IsUUID(id) {
		return nil, common.ErrorNotFound
	}
	query := `
		SELECT id, event_id, name, description, image_key, seniority_index
		FROM prizes
		WHERE id = $1
	`
	p := &models.Prize{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EventID, &p.Name, &p.Description, &p.ImageKey, &p.SeniorityIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPrizes(ctx context.Context, eventID string) ([]*models.Prize, error) {
	query := `
		SELECT id, event_id, name, description, image_key, seniority_index
		FROM prizes
		WHERE event_id = $1
		ORDER BY seniority_index, name
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Prize
	for rows.Next() {
		p := &models.Prize{}
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Description, &p.ImageKey, &p.SeniorityIndex); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetPrizeImage(ctx context.Context, prizeID, key string) error {
	query := `
		UPDATE prizes SET image_key = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, prizeID, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
