package models

import "time"

// Entry is a participant's one-time submission. ID is the 6-symbol entry
// code shown to the participant.
type Entry struct {
	ID             string
	EventID        string
	QRCodeID       string
	Name           string
	Email          *string
	WhatsAppNumber string
	Address        string
	City           string
	Pincode        string
	PrizeID        *string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

// EntryConfirmation is what the confirmation view may reveal.
type EntryConfirmation struct {
	EntryCode string
	Name      string
	EventName string
}

// Winner is an entry that has a prize assigned.
type Winner struct {
	Entry
	PrizeName      string
	SeniorityIndex int
}
