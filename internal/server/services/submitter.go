package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/auth"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

const maxCodeAttempts = 5

// SubmitEntryInput is the entry form plus the token and event it is bound to.
type SubmitEntryInput struct {
	QRToken        string
	EventID        string
	Name           string
	Email          string
	WhatsAppNumber string
	Address        string
	City           string
	Pincode        string
	Meta           RequestMeta
}

// Submission is a stored entry together with the verification token that
// lets its submitter open the confirmation view.
type Submission struct {
	EntryCode         string
	EventID           string
	VerificationToken string
	TokenMaxAge       time.Duration
}

// EntryNotifier is told about every stored entry. Delivery is best effort.
type EntryNotifier interface {
	EntryCreated(ctx context.Context, entry *models.Entry)
}

// EntrySubmitter stores entries. Single use of a QR code is guaranteed by
// the unique constraint on entries.qr_code_id, not by the validator's
// pre-check. Submissions are not rate limited.
type EntrySubmitter struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	attempts    *AttemptLogger
	notifier    EntryNotifier
	log         logging.Logger
	secret      []byte
	tokenMaxAge time.Duration
	now         func() time.Time
	newCode     func() (string, error)
}

func NewEntrySubmitter(db *sql.DB, m repomanager.RepositoryManager, attempts *AttemptLogger, notifier EntryNotifier,
	log logging.Logger, secret []byte, tokenMaxAge time.Duration) *EntrySubmitter {
	return &EntrySubmitter{
		db:          db,
		repomanager: m,
		attempts:    attempts,
		notifier:    notifier,
		log:         log.With("module", "submitter"),
		secret:      secret,
		tokenMaxAge: tokenMaxAge,
		now:         time.Now,
		newCode:     newEntryCode,
	}
}

func newEntryCode() (string, error) {
	return common.RandomString(common.EntryCodeAlphabet, common.EntryCodeLength)
}

// SubmitEntry returns a *Rejection on any failure.
func (s *EntrySubmitter) SubmitEntry(ctx context.Context, in SubmitEntryInput) (*Submission, error) {
	entry, rej := s.store(ctx, in)

	attempt := AttemptInput{Meta: in.Meta, Type: common.AttemptEntrySubmission, RawInput: in.QRToken, Success: rej == nil}
	if rej != nil {
		attempt.Reason = rej.Message
		if rej.Cause != nil && errors.Is(rej.Kind, common.ErrorInternal) {
			s.log.Error(ctx, "entry submission failed", "ip", in.Meta.IP, "error", rej.Cause)
		}
		s.attempts.Log(ctx, attempt)
		return nil, rej
	}

	token, err := auth.IssueVerificationToken(entry.ID, entry.EventID, s.now(), s.secret)
	if err != nil {
		rej := internal(MsgSubmissionFailed, err)
		attempt.Success, attempt.Reason = false, rej.Message
		s.log.Error(ctx, "issue verification token", "entry", entry.ID, "error", err)
		s.attempts.Log(ctx, attempt)
		return nil, rej
	}

	s.attempts.Log(ctx, attempt)
	s.log.Info(ctx, "entry submitted", "entry", entry.ID, "event_id", entry.EventID)

	if s.notifier != nil {
		s.notifier.EntryCreated(ctx, entry)
	}

	return &Submission{
		EntryCode:         entry.ID,
		EventID:           entry.EventID,
		VerificationToken: token,
		TokenMaxAge:       s.tokenMaxAge,
	}, nil
}

// trimmed cleans the form fields. The QR token is left as sent so that it
// is judged and logged exactly as the validator sees it.
func trimmed(in SubmitEntryInput) SubmitEntryInput {
	in.EventID = strings.TrimSpace(in.EventID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.WhatsAppNumber = strings.TrimSpace(in.WhatsAppNumber)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Pincode = strings.TrimSpace(in.Pincode)
	return in
}

func missingFields(in SubmitEntryInput) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"eventId", in.EventID},
		{"name", in.Name},
		{"whatsappNumber", in.WhatsAppNumber},
		{"address", in.Address},
		{"city", in.City},
		{"pincode", in.Pincode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s *EntrySubmitter) store(ctx context.Context, in SubmitEntryInput) (*models.Entry, *Rejection) {
	in = trimmed(in)

	if missing := missingFields(in); len(missing) > 0 {
		rej := reject(common.ErrorValidation, MsgMissingRequiredFields)
		rej.Cause = fmt.Errorf("missing: %s", strings.Join(missing, ", "))
		return nil, rej
	}
	if !common.IsQRToken(in.QRToken) {
		return nil, reject(common.ErrInvalidQRCode, MsgInvalidQRCode)
	}
	if !common.IsUUID(in.EventID) {
		return nil, reject(common.ErrNoActiveEvent, MsgNoActiveEvent)
	}

	entry := &models.Entry{
		EventID:        in.EventID,
		QRCodeID:       in.QRToken,
		Name:           in.Name,
		WhatsAppNumber: in.WhatsAppNumber,
		Address:        in.Address,
		City:           in.City,
		Pincode:        in.Pincode,
		IPAddress:      in.Meta.IP,
		UserAgent:      in.Meta.UserAgent,
	}
	if in.Email != "" {
		email := in.Email
		entry.Email = &email
	}

	repo := s.repomanager.Entries(s.db)

	// A code can collide on the pre-check or, under a race, on insert.
	// Both consume one of the attempts.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, internal(MsgSubmissionFailed, err)
		}

		taken, err := repo.ExistsByID(ctx, code)
		if err != nil {
			return nil, internal(MsgSubmissionFailed, err)
		}
		if taken {
			continue
		}

		entry.ID = code
		err = repo.Create(ctx, entry)
		switch {
		case err == nil:
			return entry, nil
		case errors.Is(err, common.ErrDuplicateEntryCode):
			continue
		case errors.Is(err, common.ErrQRCodeAlreadyUsed):
			return nil, reject(common.ErrQRCodeAlreadyUsed, MsgQRCodeUsed)
		case errors.Is(err, common.ErrInvalidQRCode):
			return nil, reject(common.ErrInvalidQRCode, MsgInvalidQRCode)
		case errors.Is(err, common.ErrNoActiveEvent):
			return nil, reject(common.ErrNoActiveEvent, MsgNoActiveEvent)
		default:
			return nil, internal(MsgSubmissionFailed, err)
		}
	}

	return nil, reject(common.ErrCodeGeneration, MsgCodeGenerationFailed)
}
