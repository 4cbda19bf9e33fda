package models

import "time"

// QRCode is a single-use entry credential. It is consumed once an Entry
// references it; Used is derived from that at read time.
type QRCode struct {
	ID        string
	CreatedBy string
	CreatedAt time.Time
	ExpiresAt *time.Time
	Used      bool
}

// Expired reports whether the code has an expiry strictly before now.
func (q *QRCode) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && q.ExpiresAt.Before(now)
}
