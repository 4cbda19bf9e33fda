// Package services contains the server-side business logic: the public QR
// entry flow (validation, submission, verification) and the admin features
// built around it.
package services

import (
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
)

// User-facing messages of the public flow.
const (
	MsgTooManyAttempts       = "Too many attempts"
	MsgInvalidQRCode         = "Invalid QR code"
	MsgQRCodeExpired         = "This QR code has expired"
	MsgQRCodeUsed            = "This QR code has already been used"
	MsgNoActiveEvent         = "No active giveaway found"
	MsgValidationFailed      = "Failed to validate QR code"
	MsgCodeGenerationFailed  = "Failed to generate unique entry code"
	MsgSubmissionFailed      = "Failed to submit entry"
	MsgNoEntry               = "No entry found"
	MsgVerificationExpired   = "Entry verification expired"
	MsgInvalidEntry          = "Invalid entry"
	MsgVerificationFailed    = "Failed to verify entry"
	MsgMissingRequiredFields = "Missing required fields"
)

// Rejection is the terminal failure of a public flow operation. Message is
// safe to show to the participant. Kind is one of the common sentinels and
// can be matched with errors.Is; Cause, when set, is the underlying
// infrastructure error and is never shown.
type Rejection struct {
	Kind       error
	Message    string
	RetryAfter *time.Time
	Cause      error
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() []error {
	if r.Cause != nil {
		return []error{r.Kind, r.Cause}
	}
	return []error{r.Kind}
}

func reject(kind error, msg string) *Rejection {
	return &Rejection{Kind: kind, Message: msg}
}

func internal(msg string, cause error) *Rejection {
	return &Rejection{Kind: common.ErrorInternal, Message: msg, Cause: cause}
}

// RequestMeta is the request context the public flow records.
type RequestMeta struct {
	IP        string
	UserAgent string
}
