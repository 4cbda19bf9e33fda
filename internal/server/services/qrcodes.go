package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const MaxQRBatch = 1000

// newQRToken is a seam for tests.
var newQRToken = func() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// QRCodeService mints QR tokens in batches.
type QRCodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewQRCodeService(db *sql.DB, m repomanager.RepositoryManager) *QRCodeService {
	return &QRCodeService{db: db, repomanager: m, now: time.Now}
}

// GenerateBatch mints count version 4 UUID tokens in one transaction.
// expiresAt, when set, must be in the future.
func (s *QRCodeService) GenerateBatch(ctx context.Context, adminID string, count int, expiresAt *time.Time) ([]*models.QRCode, error) {
	if count < 1 || count > MaxQRBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", common.ErrorValidation, MaxQRBatch)
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", common.ErrorValidation)
	}

	codes := make([]*models.QRCode, 0, count)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.QRCodes(tx)
		for i := 0; i < count; i++ {
			token, err := newQRToken()
			if err != nil {
				return err
			}
			code := &models.QRCode{ID: token, CreatedBy: adminID, ExpiresAt: expiresAt}
			if err := repo.Create(ctx, code); err != nil {
				return err
			}
			codes = append(codes, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *QRCodeService) ListQRCodes(ctx context.Context, limit, offset int) ([]*models.QRCode, error) {
	limit, offset = Page(limit, offset)
	return s.repomanager.QRCodes(s.db).List(ctx, limit, offset)
}
