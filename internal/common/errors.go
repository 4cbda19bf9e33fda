// Package common defines shared constants and sentinel errors used across
// the giveaway server, its repositories and the operator CLI. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrDuplicateEntryCode is returned when an entry insert collides on the
	// entry code primary key.
	ErrDuplicateEntryCode = errors.New("duplicate entry code")

	// ErrQRCodeAlreadyUsed is returned when an entry insert collides on the
	// unique QR code reference.
	ErrQRCodeAlreadyUsed = errors.New("qr code already used")

	// ErrAlreadyExists covers the remaining unique violations (admin usernames).
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Public flow rejections.
	ErrRateLimited          = errors.New("rate limited")
	ErrInvalidQRCode        = errors.New("invalid qr code")
	ErrQRCodeExpired        = errors.New("qr code expired")
	ErrNoActiveEvent        = errors.New("no active event")
	ErrCodeGeneration       = errors.New("entry code generation exhausted")
	ErrNoEntry              = errors.New("no entry")
	ErrVerificationExpired  = errors.New("verification expired")
	ErrInvalidEntry         = errors.New("invalid entry")
	ErrEventOverlap         = errors.New("event dates overlap an existing event")
	ErrStorageNotConfigured = errors.New("object storage is not configured")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
