package common

import "regexp"

// AccessTokenHeaderName is the HTTP header carrying the admin access token.
const AccessTokenHeaderName = "Authorization"

// VerificationCookieName is the cookie that carries the entry verification token.
const VerificationCookieName = "entry_verification"

// Attempt types recorded in entry_attempts.
const (
	AttemptQRValidation    = "qr_validation"
	AttemptEntrySubmission = "entry_submission"
)

// EntryCodeAlphabet is the alphabet entry codes are drawn from.
const EntryCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EntryCodeLength is the length of a human-facing entry code.
const EntryCodeLength = 6

// QRTokenPattern matches the lowercase UUID v4 shape minted for QR codes.
var QRTokenPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsQRToken reports whether s has the QR token syntax.
func IsQRToken(s string) bool {
	return QRTokenPattern.MatchString(s)
}
