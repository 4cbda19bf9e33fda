package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/giveaway/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	entryID := "A1B2C3"
	m := &models.MessageLog{EntryID: &entryID, Recipient: "9876543210", Body: "hi", Status: models.MessageSent}
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+message_logs\s*\(entry_id,\s*recipient,\s*body,\s*status,\s*error\)`).
		WithArgs("A1B2C3", "9876543210", "hi", "sent", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, int64(1), m.ID)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+message_logs`).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), &models.MessageLog{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestListRecent(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	cols := []string{"id", "entry_id", "recipient", "body", "status", "error", "created_at"}
	mock.ExpectQuery(`(?s)FROM\s+message_logs\s+ORDER\s+BY`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(2), nil, "9876543210", "hi", "failed", "gateway returned 502", time.Now()))

	got, err := repo.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].EntryID)
	require.NotNil(t, got[0].Error)
	assert.Equal(t, "gateway returned 502", *got[0].Error)
}
