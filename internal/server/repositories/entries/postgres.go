package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
)

const (
	constraintPrimaryKey = "entries_pkey"
	constraintQRCode     = "entries_qr_code_id_key"
	constraintQRCodeRef  = "entries_qr_code_id_fkey"
	constraintEventRef   = "entries_event_id_fkey"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, code)
}

func (r *PostgresRepository) ExistsByQRCode(ctx context.Context, qrCodeID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE qr_code_id = $1)`, qrCodeID)
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, event_id, qr_code_id, name, email, whatsapp_number, address, city, pincode, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.EventID, entry.QRCodeID, entry.Name, entry.Email, entry.WhatsAppNumber,
		entry.Address, entry.City, entry.Pincode, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if name, ok := dbx.UniqueViolation(err); ok {
			switch name {
			case constraintQRCode:
				return common.ErrQRCodeAlreadyUsed
			case constraintPrimaryKey:
				return common.ErrDuplicateEntryCode
			}
		}
		if name, ok := dbx.ForeignKeyViolation(err); ok {
			switch name {
			case constraintQRCodeRef:
				return common.ErrInvalidQRCode
			case constraintEventRef:
				return common.ErrNoActiveEvent
			}
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetConfirmation(ctx context.Context, code, eventID string) (*models.EntryConfirmation, error) {
	query := `
		SELECT e.id, e.name, ev.name
		FROM entries e
		JOIN events ev ON ev.id = e.event_id
		WHERE e.id = $1 AND e.event_id = $2
	`
	c := &models.EntryConfirmation{}
	if err := r.db.QueryRowContext(ctx, query, code, eventID).Scan(&c.EntryCode, &c.Name, &c.EventName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

const entryColumns = `e.id, e.event_id, e.qr_code_id, e.name, e.email, e.whatsapp_number, e.address, e.city, e.pincode, e.prize_id, e.ip_address, e.user_agent, e.created_at`

func scanEntry(rows *sql.Rows, extra ...any) (*models.Entry, error) {
	e := &models.Entry{}
	dest := append([]any{
		&e.ID, &e.EventID, &e.QRCodeID, &e.Name, &e.Email, &e.WhatsAppNumber, &e.Address,
		&e.City, &e.Pincode, &e.PrizeID, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries e
		WHERE e.event_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
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

func (r *PostgresRepository) ListWinners(ctx context.Context, eventID string) ([]*models.Winner, error) {
	query := `
		SELECT ` + entryColumns + `, p.name, p.seniority_index
		FROM entries e
		JOIN prizes p ON p.id = e.prize_id
		WHERE e.event_id = $1
		ORDER BY p.seniority_index, e.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Winner
	for rows.Next() {
		w := &models.Winner{}
		e, err := scanEntry(rows, &w.PrizeName, &w.SeniorityIndex)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		w.Entry = *e
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
