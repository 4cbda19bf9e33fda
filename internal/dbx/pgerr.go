package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// UniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	return violation(err, pgUniqueViolation)
}

// ForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation and returns the name of the violated constraint.
func ForeignKeyViolation(err error) (string, bool) {
	return violation(err, pgForeignKeyViolation)
}
