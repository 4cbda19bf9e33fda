package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
)

const confirmationTimeout = 15 * time.Second

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	Enabled() bool
	Send(ctx context.Context, to, body string) error
}

// MessageService sends participant messages and records every attempt in
// message_logs. It implements EntryNotifier.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sender      MessageSender
	log         logging.Logger
	pending     sync.WaitGroup
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, sender MessageSender, log logging.Logger) *MessageService {
	return &MessageService{db: db, repomanager: m, sender: sender, log: log.With("module", "messages")}
}

func confirmationText(e *models.Entry) string {
	return fmt.Sprintf("Hi %s, thank you for entering the giveaway! Your entry code is %s.", e.Name, e.ID)
}

// EntryCreated queues the entry code for the participant and returns
// without waiting for the gateway. Delivery is detached from ctx's
// cancellation and bounded by confirmationTimeout. Failures are recorded and
// logged, never returned.
func (s *MessageService) EntryCreated(ctx context.Context, entry *models.Entry) {
	if !s.sender.Enabled() {
		return
	}
	entryID := entry.ID
	msg := &models.MessageLog{EntryID: &entryID, Recipient: entry.WhatsAppNumber, Body: confirmationText(entry)}

	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, confirmationTimeout)
		defer cancel()
		_ = s.deliver(ctx, msg)
	}()
}

// Wait blocks until every queued confirmation has been delivered or failed.
func (s *MessageService) Wait() {
	s.pending.Wait()
}

// Send delivers an operator-written message and returns the logged record.
func (s *MessageService) Send(ctx context.Context, entryID *string, to, body string) (*models.MessageLog, error) {
	msg := &models.MessageLog{EntryID: entryID, Recipient: to, Body: body}
	err := s.deliver(ctx, msg)
	return msg, err
}

func (s *MessageService) deliver(ctx context.Context, msg *models.MessageLog) error {
	sendErr := s.sender.Send(ctx, msg.Recipient, msg.Body)
	msg.Status = models.MessageSent
	if sendErr != nil {
		reason := sendErr.Error()
		msg.Status, msg.Error = models.MessageFailed, &reason
		s.log.Warn(ctx, "message delivery failed", "recipient", msg.Recipient, "error", sendErr)
	}

	if err := s.repomanager.Messages(s.db).Create(ctx, msg); err != nil {
		s.log.Error(ctx, "failed to record message", "recipient", msg.Recipient, "error", err)
	}
	return sendErr
}

func (s *MessageService) ListMessages(ctx context.Context, limit, offset int) ([]*models.MessageLog, error) {
	limit, offset = Page(limit, offset)
	return s.repomanager.Messages(s.db).ListRecent(ctx, limit, offset)
}
