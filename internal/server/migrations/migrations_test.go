package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		require.NoError(t, err)
		body := string(b)
		assert.True(t, strings.Contains(body, "-- +goose Up"), f)
		assert.True(t, strings.Contains(body, "-- +goose Down"), f)
	}
}

func TestMigrations_EntryConstraintNames(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00002_giveaway.sql")
	require.NoError(t, err)

	// repositories map unique violations by these names
	assert.Contains(t, string(b), "CONSTRAINT entries_pkey PRIMARY KEY (id)")
	assert.Contains(t, string(b), "CONSTRAINT entries_qr_code_id_key UNIQUE (qr_code_id)")
}
