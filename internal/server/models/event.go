package models

import "time"

type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventActive   EventStatus = "active"
	EventEnded    EventStatus = "ended"
)

// Event is a giveaway window. StartDate is midnight UTC of the first day and
// EndDate the last instant of the final day, both inclusive.
type Event struct {
	ID          string
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

func (e *Event) Status(now time.Time) EventStatus {
	switch {
	case now.Before(e.StartDate):
		return EventUpcoming
	case now.After(e.EndDate):
		return EventEnded
	default:
		return EventActive
	}
}

// Prize belongs to exactly one event. Lower SeniorityIndex means more senior.
type Prize struct {
	ID             string
	EventID        string
	Name           string
	Description    *string
	ImageKey       *string
	SeniorityIndex int
}
