package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/dbx"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/admins"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/entries"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/events"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/messages"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/qrcodes"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/refreshtokens"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// memStore is an in-memory stand-in for the database. Unique constraints on
// entries are enforced under the lock, like the real ones.
type memStore struct {
	mu       sync.Mutex
	seq      int
	admins   map[string]*models.Admin
	refresh  map[string]*models.RefreshToken
	qrcodes  map[string]*models.QRCode
	events   []*models.Event
	prizes   []*models.Prize
	entries  map[string]*models.Entry
	attempts []*models.Attempt
	messages []*models.MessageLog
	failures map[string]error
	clock    func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		admins:   map[string]*models.Admin{},
		refresh:  map[string]*models.RefreshToken{},
		qrcodes:  map[string]*models.QRCode{},
		entries:  map[string]*models.Entry{},
		failures: map[string]error{},
		clock:    time.Now,
	}
}

// failOn makes the named repository method return err.
func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) attemptsSnapshot() []models.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, *a)
	}
	return out
}

func (s *memStore) hasEvent(id string) bool {
	for _, e := range s.events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *memStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// --- repositories ---

type memAdmins struct{ s *memStore }

func (r memAdmins) Create(_ context.Context, a *models.Admin) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("admins.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.admins[a.Username]; ok {
		return nil, common.ErrAlreadyExists
	}
	c := *a
	c.ID = r.s.nextID("admin")
	c.CreatedAt = r.s.clock()
	r.s.admins[c.Username] = &c
	return &c, nil
}

func (r memAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("admins.GetByUsername"); err != nil {
		return nil, err
	}
	a, ok := r.s.admins[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

type memRefresh struct{ s *memStore }

func (r memRefresh) Create(_ context.Context, adminID, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.Create"); err != nil {
		return err
	}
	r.s.refresh[token] = &models.RefreshToken{ID: r.s.nextID("rt"), AdminID: adminID, Token: token, Expires: expiresAt}
	return nil
}

func (r memRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refreshtokens.Find"); err != nil {
		return nil, err
	}
	t, ok := r.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r memRefresh) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.refresh, token)
	return nil
}

func (r memRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.refresh {
		if t.Expires.Before(now) {
			delete(r.s.refresh, k)
			n++
		}
	}
	return n, nil
}

type memQRCodes struct{ s *memStore }

func (r memQRCodes) Create(_ context.Context, code *models.QRCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("qrcodes.Create"); err != nil {
		return err
	}
	code.CreatedAt = r.s.clock()
	c := *code
	r.s.qrcodes[code.ID] = &c
	return nil
}

func (r memQRCodes) GetByID(_ context.Context, id string) (*models.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("qrcodes.GetByID"); err != nil {
		return nil, err
	}
	q, ok := r.s.qrcodes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *q
	return &c, nil
}

func (r memQRCodes) List(_ context.Context, limit, offset int) ([]*models.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	used := map[string]bool{}
	for _, e := range r.s.entries {
		used[e.QRCodeID] = true
	}
	var out []*models.QRCode
	for _, q := range r.s.qrcodes {
		c := *q
		c.Used = used[q.ID]
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("events.Create"); err != nil {
		return err
	}
	e.ID = r.s.nextID("event")
	e.CreatedAt = r.s.clock()
	c := *e
	r.s.events = append(r.s.events, &c)
	return nil
}

func (r memEvents) FindOverlapping(_ context.Context, start, end time.Time) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("events.FindOverlapping"); err != nil {
		return nil, err
	}
	var out []*models.Event
	for _, e := range r.s.events {
		if !e.StartDate.After(end) && !e.EndDate.Before(start) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memEvents) FindActive(_ context.Context, now time.Time) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("events.FindActive"); err != nil {
		return nil, err
	}
	var best *models.Event
	for _, e := range r.s.events {
		if e.Status(now) == models.EventActive && (best == nil || e.StartDate.Before(best.StartDate)) {
			best = e
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	c := *best
	return &c, nil
}

func (r memEvents) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memEvents) List(_ context.Context) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r memEvents) CreatePrize(_ context.Context, p *models.Prize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("events.CreatePrize"); err != nil {
		return err
	}
	p.ID = r.s.nextID("prize")
	c := *p
	r.s.prizes = append(r.s.prizes, &c)
	return nil
}

func (r memEvents) GetPrize(_ context.Context, id string) (*models.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.prizes {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memEvents) ListPrizes(_ context.Context, eventID string) ([]*models.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Prize
	for _, p := range r.s.prizes {
		if p.EventID == eventID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SeniorityIndex < out[j].SeniorityIndex })
	return out, nil
}

func (r memEvents) SetPrizeImage(_ context.Context, prizeID, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.prizes {
		if p.ID == prizeID {
			k := key
			p.ImageKey = &k
			return nil
		}
	}
	return common.ErrorNotFound
}

type memEntries struct{ s *memStore }

func (r memEntries) ExistsByID(_ context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.ExistsByID"); err != nil {
		return false, err
	}
	_, ok := r.s.entries[code]
	return ok, nil
}

func (r memEntries) ExistsByQRCode(_ context.Context, qrCodeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.ExistsByQRCode"); err != nil {
		return false, err
	}
	for _, e := range r.s.entries {
		if e.QRCodeID == qrCodeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memEntries) Create(_ context.Context, entry *models.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.Create"); err != nil {
		return err
	}
	if _, ok := r.s.qrcodes[entry.QRCodeID]; !ok {
		return common.ErrInvalidQRCode
	}
	if !r.s.hasEvent(entry.EventID) {
		return common.ErrNoActiveEvent
	}
	for _, e := range r.s.entries {
		if e.QRCodeID == entry.QRCodeID {
			return common.ErrQRCodeAlreadyUsed
		}
	}
	if _, ok := r.s.entries[entry.ID]; ok {
		return common.ErrDuplicateEntryCode
	}
	entry.CreatedAt = r.s.clock()
	c := *entry
	r.s.entries[entry.ID] = &c
	return nil
}

func (r memEntries) GetConfirmation(_ context.Context, code, eventID string) (*models.EntryConfirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("entries.GetConfirmation"); err != nil {
		return nil, err
	}
	e, ok := r.s.entries[code]
	if !ok || e.EventID != eventID {
		return nil, common.ErrorNotFound
	}
	for _, ev := range r.s.events {
		if ev.ID == eventID {
			return &models.EntryConfirmation{EntryCode: e.ID, Name: e.Name, EventName: ev.Name}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memEntries) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]*models.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Entry
	for _, e := range r.s.entries {
		if e.EventID == eventID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r memEntries) ListWinners(_ context.Context, eventID string) ([]*models.Winner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Winner
	for _, e := range r.s.entries {
		if e.EventID != eventID || e.PrizeID == nil {
			continue
		}
		for _, p := range r.s.prizes {
			if p.ID == *e.PrizeID {
				out = append(out, &models.Winner{Entry: *e, PrizeName: p.Name, SeniorityIndex: p.SeniorityIndex})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeniorityIndex < out[j].SeniorityIndex })
	return out, nil
}

type memAttempts struct{ s *memStore }

func (r memAttempts) Create(_ context.Context, a *models.Attempt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attempts.Create"); err != nil {
		return err
	}
	r.s.seq++
	a.ID = int64(r.s.seq)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.s.clock()
	}
	c := *a
	r.s.attempts = append(r.s.attempts, &c)
	return nil
}

func (r memAttempts) FailureStats(_ context.Context, ip, attemptType string, since time.Time) (*models.FailureStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attempts.FailureStats"); err != nil {
		return nil, err
	}
	stats := &models.FailureStats{}
	for _, a := range r.s.attempts {
		if a.IPAddress != ip || a.Type != attemptType || a.Success || a.CreatedAt.Before(since) {
			continue
		}
		if stats.Count == 0 || a.CreatedAt.Before(stats.Oldest) {
			stats.Oldest = a.CreatedAt
		}
		stats.Count++
	}
	return stats, nil
}

func (r memAttempts) ListRecent(_ context.Context, limit, offset int) ([]*models.Attempt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Attempt, 0, len(r.s.attempts))
	for i := len(r.s.attempts) - 1; i >= 0; i-- {
		c := *r.s.attempts[i]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

type memMessages struct{ s *memStore }

func (r memMessages) Create(_ context.Context, m *models.MessageLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("messages.Create"); err != nil {
		return err
	}
	r.s.seq++
	m.ID = int64(r.s.seq)
	m.CreatedAt = r.s.clock()
	c := *m
	r.s.messages = append(r.s.messages, &c)
	return nil
}

func (r memMessages) ListRecent(_ context.Context, limit, offset int) ([]*models.MessageLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.MessageLog, 0, len(r.s.messages))
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		c := *r.s.messages[i]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// fakeRepoManager hands out memStore repositories regardless of the DBTX.
type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Admins(dbx.DBTX) admins.Repository           { return memAdmins{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return memRefresh{m.s}
}
func (m *fakeRepoManager) QRCodes(dbx.DBTX) qrcodes.Repository   { return memQRCodes{m.s} }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository     { return memEvents{m.s} }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository   { return memEntries{m.s} }
func (m *fakeRepoManager) Attempts(dbx.DBTX) attempts.Repository { return memAttempts{m.s} }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository { return memMessages{m.s} }

// fakeSender records messages and fails with err when set.
type fakeSender struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []string
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+": "+body)
	return nil
}

// publicFlow wires the public services over one memStore and a shared clock.
type publicFlow struct {
	store     *memStore
	now       time.Time
	limiter   *RateLimiter
	attempts  *AttemptLogger
	validator *QRValidator
	submitter *EntrySubmitter
	verifier  *EntryVerifier
	notifier  *MessageService
	sender    *fakeSender
}

var testSecret = []byte("test-secret")

func newPublicFlow(t *testing.T, now time.Time) *publicFlow {
	t.Helper()
	db, _ := newSQLMockDB(t)
	store := newMemStore()
	rm := &fakeRepoManager{s: store}
	log := logging.Discard()

	f := &publicFlow{store: store, now: now, sender: &fakeSender{enabled: true}}
	clock := func() time.Time { return f.now }
	store.clock = clock

	f.limiter = NewRateLimiter(db, rm, time.Hour, 5)
	f.limiter.now = clock
	f.attempts = NewAttemptLogger(db, rm, log)
	f.validator = NewQRValidator(db, rm, f.limiter, f.attempts, log)
	f.validator.now = clock
	f.notifier = NewMessageService(db, rm, f.sender, log)
	f.submitter = NewEntrySubmitter(db, rm, f.attempts, f.notifier, log, testSecret, 5*time.Minute)
	f.submitter.now = clock
	f.verifier = NewEntryVerifier(db, rm, log, testSecret, 5*time.Minute)
	f.verifier.now = clock
	return f
}

func (f *publicFlow) addQRCode(id string, expiresAt *time.Time) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.qrcodes[id] = &models.QRCode{ID: id, CreatedAt: f.now, ExpiresAt: expiresAt}
}

func (f *publicFlow) addEvent(id, name string, start, end time.Time) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.events = append(f.store.events, &models.Event{ID: id, Name: name, StartDate: start, EndDate: end})
}
