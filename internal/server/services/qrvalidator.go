package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

// Validation is a successful QR check: the participant may enter EventID.
type Validation struct {
	EventID   string
	EventName string
}

// QRValidator runs the QR check in a fixed order: rate limit, syntax,
// existence, expiry, usage, active event. The first failure wins and every
// outcome is recorded as a qr_validation attempt.
type QRValidator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limiter     *RateLimiter
	attempts    *AttemptLogger
	log         logging.Logger
	now         func() time.Time
}

func NewQRValidator(db *sql.DB, m repomanager.RepositoryManager, limiter *RateLimiter, attempts *AttemptLogger, log logging.Logger) *QRValidator {
	return &QRValidator{
		db:          db,
		repomanager: m,
		limiter:     limiter,
		attempts:    attempts,
		log:         log.With("module", "qrvalidator"),
		now:         time.Now,
	}
}

// ValidateQRCode returns a *Rejection on any failure.
func (v *QRValidator) ValidateQRCode(ctx context.Context, token string, meta RequestMeta) (*Validation, error) {
	res, rej := v.validate(ctx, token, meta)

	in := AttemptInput{Meta: meta, Type: common.AttemptQRValidation, RawInput: token, Success: rej == nil}
	if rej != nil {
		in.Reason = rej.Message
		if rej.Cause != nil && errors.Is(rej.Kind, common.ErrorInternal) {
			v.log.Error(ctx, "qr validation failed", "ip", meta.IP, "error", rej.Cause)
		}
	}
	v.attempts.Log(ctx, in)

	if rej != nil {
		return nil, rej
	}
	return res, nil
}

func (v *QRValidator) validate(ctx context.Context, token string, meta RequestMeta) (*Validation, *Rejection) {
	limit, err := v.limiter.CheckRateLimit(ctx, meta.IP)
	if err != nil {
		return nil, internal(MsgValidationFailed, err)
	}
	if limit.Limited {
		rej := reject(common.ErrRateLimited, MsgTooManyAttempts)
		rej.RetryAfter = &limit.RetryAfter
		return nil, rej
	}

	if !common.IsQRToken(token) {
		return nil, reject(common.ErrInvalidQRCode, MsgInvalidQRCode)
	}

	code, err := v.repomanager.QRCodes(v.db).GetByID(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(common.ErrInvalidQRCode, MsgInvalidQRCode)
		}
		return nil, internal(MsgValidationFailed, err)
	}

	now := v.now()
	if code.Expired(now) {
		return nil, reject(common.ErrQRCodeExpired, MsgQRCodeExpired)
	}

	used, err := v.repomanager.Entries(v.db).ExistsByQRCode(ctx, token)
	if err != nil {
		return nil, internal(MsgValidationFailed, err)
	}
	if used {
		return nil, reject(common.ErrQRCodeAlreadyUsed, MsgQRCodeUsed)
	}

	event, err := v.repomanager.Events(v.db).FindActive(ctx, now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(common.ErrNoActiveEvent, MsgNoActiveEvent)
		}
		return nil, internal(MsgValidationFailed, err)
	}

	return &Validation{EventID: event.ID, EventName: event.Name}, nil
}
