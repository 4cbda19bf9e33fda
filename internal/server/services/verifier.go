package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/auth"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

// EntryVerifier gates the confirmation view. A token must be fresh and
// must match a stored entry; it is never reissued.
type EntryVerifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	secret      []byte
	maxAge      time.Duration
	now         func() time.Time
}

func NewEntryVerifier(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, secret []byte, maxAge time.Duration) *EntryVerifier {
	return &EntryVerifier{
		db:          db,
		repomanager: m,
		log:         log.With("module", "verifier"),
		secret:      secret,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// VerifyEntry returns a *Rejection on any failure. A Kind of
// common.ErrVerificationExpired tells the caller to drop the cookie.
func (v *EntryVerifier) VerifyEntry(ctx context.Context, token string) (*models.EntryConfirmation, error) {
	if token == "" {
		return nil, reject(common.ErrNoEntry, MsgNoEntry)
	}

	claims, err := auth.ParseVerificationToken(token, v.secret)
	if err != nil {
		return nil, reject(common.ErrInvalidEntry, MsgInvalidEntry)
	}

	if claims.Timestamp+v.maxAge.Milliseconds() < v.now().UnixMilli() {
		return nil, reject(common.ErrVerificationExpired, MsgVerificationExpired)
	}

	confirmation, err := v.repomanager.Entries(v.db).GetConfirmation(ctx, claims.Code, claims.EventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(common.ErrInvalidEntry, MsgInvalidEntry)
		}
		v.log.Error(ctx, "entry lookup failed", "entry", claims.Code, "error", err)
		return nil, internal(MsgVerificationFailed, err)
	}

	return confirmation, nil
}
