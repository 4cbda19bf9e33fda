// Package models defines server-side data models persisted in the database.
package models

import "time"

// Admin is a dashboard operator. PasswordHash is a bcrypt hash.
type Admin struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
