package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

const maxLoggedInput = 50

// AttemptInput describes one terminal outcome of the public flow.
type AttemptInput struct {
	Meta     RequestMeta
	Type     string
	RawInput string
	Success  bool
	Reason   string
}

// AttemptLogger appends to the entry_attempts audit trail. It never fails
// the caller: storage errors are logged and dropped.
type AttemptLogger struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewAttemptLogger(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *AttemptLogger {
	return &AttemptLogger{db: db, repomanager: m, log: log.With("module", "attempts")}
}

// Log records the attempt. Only syntactically valid QR tokens are stored in
// the token column. A malformed input is stored as a bounded description in
// the reason instead, when the input itself was the cause of the failure.
func (l *AttemptLogger) Log(ctx context.Context, in AttemptInput) {
	a := &models.Attempt{
		IPAddress: in.Meta.IP,
		UserAgent: in.Meta.UserAgent,
		Type:      in.Type,
		Success:   in.Success,
	}

	reason := in.Reason
	if common.IsQRToken(in.RawInput) {
		token := in.RawInput
		a.QRCodeID = &token
	} else if !in.Success && (reason == "" || reason == MsgInvalidQRCode) {
		reason = "Invalid QR format: " + common.Truncate(in.RawInput, maxLoggedInput)
	}
	if reason != "" {
		a.FailureReason = &reason
	}

	if err := l.repomanager.Attempts(l.db).Create(ctx, a); err != nil {
		l.log.Error(ctx, "failed to record attempt", "type", in.Type, "ip", in.Meta.IP, "error", err)
	}
}
