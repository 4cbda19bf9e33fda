package models

import "time"

// Attempt is a row of the append-only entry_attempts audit trail.
type Attempt struct {
	ID            int64
	IPAddress     string
	UserAgent     string
	Type          string
	QRCodeID      *string
	Success       bool
	FailureReason *string
	CreatedAt     time.Time
}

// FailureStats summarises failed attempts inside a window.
type FailureStats struct {
	Count  int
	Oldest time.Time
}
