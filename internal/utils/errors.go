package utils

import (
	"errors"

	"github.com/jackc/pgconn"
)

var (
	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err carries postgres error 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
