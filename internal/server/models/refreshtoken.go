package models

import "time"

type RefreshToken struct {
	ID        string
	AdminID   string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
