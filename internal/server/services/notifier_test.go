package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageService(t *testing.T, sender *fakeSender) (*MessageService, *memStore) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	return NewMessageService(db, &fakeRepoManager{s: store}, sender, logging.Discard()), store
}

func TestEntryCreated(t *testing.T) {
	sender := &fakeSender{enabled: true}
	s, store := newMessageService(t, sender)

	s.EntryCreated(context.Background(), &models.Entry{ID: "K7Q2ZD", Name: "Asha", WhatsAppNumber: "9876543210"})
	s.Wait()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "9876543210: Hi Asha, thank you for entering the giveaway! Your entry code is K7Q2ZD.", sender.sent[0])
	require.Len(t, store.messages, 1)
	assert.Equal(t, models.MessageSent, store.messages[0].Status)
	require.NotNil(t, store.messages[0].EntryID)
	assert.Equal(t, "K7Q2ZD", *store.messages[0].EntryID)
}

func TestEntryCreated_Disabled(t *testing.T) {
	sender := &fakeSender{}
	s, store := newMessageService(t, sender)

	s.EntryCreated(context.Background(), &models.Entry{ID: "K7Q2ZD", WhatsAppNumber: "9876543210"})
	s.Wait()

	assert.Empty(t, sender.sent)
	assert.Empty(t, store.messages)
}

// gatedSender holds every delivery until release is closed.
type gatedSender struct {
	release     chan struct{}
	ctxErr      error
	hasDeadline bool
}

func (g *gatedSender) Enabled() bool { return true }

func (g *gatedSender) Send(ctx context.Context, _, _ string) error {
	<-g.release
	g.ctxErr = ctx.Err()
	_, g.hasDeadline = ctx.Deadline()
	return nil
}

func TestEntryCreated_DoesNotWaitForGateway(t *testing.T) {
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	sender := &gatedSender{release: make(chan struct{})}
	s := NewMessageService(db, &fakeRepoManager{s: store}, sender, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		s.EntryCreated(ctx, &models.Entry{ID: "K7Q2ZD", Name: "Asha", WhatsAppNumber: "9876543210"})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("EntryCreated blocked on the gateway")
	}

	cancel()
	close(sender.release)
	s.Wait()

	assert.NoError(t, sender.ctxErr, "delivery must survive the request context")
	assert.True(t, sender.hasDeadline)
	require.Len(t, store.messages, 1)
	assert.Equal(t, models.MessageSent, store.messages[0].Status)
}

func TestSend(t *testing.T) {
	sender := &fakeSender{enabled: true}
	s, store := newMessageService(t, sender)

	msg, err := s.Send(context.Background(), nil, "9876543210", "You won!")
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, msg.Status)
	assert.NotZero(t, msg.ID)

	sender.err = errBoom{}
	msg, err = s.Send(context.Background(), nil, "9876543210", "You won!")
	assert.ErrorIs(t, err, errBoom{})
	assert.Equal(t, models.MessageFailed, msg.Status)

	list, err := s.ListMessages(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.MessageFailed, list[0].Status)
	assert.Len(t, store.messages, 2)
}

func TestSend_LogFailureStillReportsDelivery(t *testing.T) {
	sender := &fakeSender{enabled: true}
	s, store := newMessageService(t, sender)
	store.failOn("messages.Create", errBoom{})

	_, err := s.Send(context.Background(), nil, "9876543210", "hello")
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
}
