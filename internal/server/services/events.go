package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/giveaway/internal/timex"
)

type PrizeInput struct {
	Name           string
	Description    string
	SeniorityIndex *int
}

// EventInput describes a new event. Only the calendar days of StartDate and
// EndDate matter.
type EventInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Prizes      []PrizeInput
}

// EventDetails is an event with its derived status and, where loaded, its
// prizes in seniority order.
type EventDetails struct {
	Event  *models.Event
	Status models.EventStatus
	Prizes []*models.Prize
}

// EventService manages events. No two events may overlap, counting both
// end days.
type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager) *EventService {
	return &EventService{db: db, repomanager: m, now: time.Now}
}

func validateEvent(in *EventInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", common.ErrorValidation)
	}
	if timex.StartOfDay(in.EndDate).Before(timex.StartOfDay(in.StartDate)) {
		return fmt.Errorf("%w: end date is before start date", common.ErrorValidation)
	}
	for i := range in.Prizes {
		in.Prizes[i].Name = strings.TrimSpace(in.Prizes[i].Name)
		if in.Prizes[i].Name == "" {
			return fmt.Errorf("%w: prize %d has no name", common.ErrorValidation, i+1)
		}
	}
	return nil
}

// CreateEvent stores the event and its prizes in one serializable
// transaction. An overlap is reported as common.ErrEventOverlap before
// anything is written.
func (s *EventService) CreateEvent(ctx context.Context, adminID string, in EventInput) (*EventDetails, error) {
	if err := validateEvent(&in); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		StartDate:   timex.StartOfDay(in.StartDate),
		EndDate:     timex.EndOfDay(in.EndDate),
		CreatedBy:   adminID,
	}

	var prizes []*models.Prize
	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Events(tx)

		overlapping, err := repo.FindOverlapping(ctx, event.StartDate, event.EndDate)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: %q", common.ErrEventOverlap, overlapping[0].Name)
		}

		if err := repo.Create(ctx, event); err != nil {
			return err
		}

		for i, p := range in.Prizes {
			prize := &models.Prize{EventID: event.ID, Name: p.Name, SeniorityIndex: i + 1}
			if p.SeniorityIndex != nil {
				prize.SeniorityIndex = *p.SeniorityIndex
			}
			if d := strings.TrimSpace(p.Description); d != "" {
				prize.Description = &d
			}
			if err := repo.CreatePrize(ctx, prize); err != nil {
				return err
			}
			prizes = append(prizes, prize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &EventDetails{Event: event, Status: event.Status(s.now()), Prizes: prizes}, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]*EventDetails, error) {
	events, err := s.repomanager.Events(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]*EventDetails, 0, len(events))
	for _, e := range events {
		result = append(result, &EventDetails{Event: e, Status: e.Status(now)})
	}
	return result, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*EventDetails, error) {
	repo := s.repomanager.Events(s.db)
	event, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prizes, err := repo.ListPrizes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventDetails{Event: event, Status: event.Status(s.now()), Prizes: prizes}, nil
}
