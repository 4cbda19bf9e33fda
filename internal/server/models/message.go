package models

import "time"

const (
	MessageSent   = "sent"
	MessageFailed = "failed"
)

// MessageLog records one delivery attempt to the messaging gateway.
type MessageLog struct {
	ID        int64
	EntryID   *string
	Recipient string
	Body      string
	Status    string
	Error     *string
	CreatedAt time.Time
}
