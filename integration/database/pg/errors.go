package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString = errors.New("pg: empty connection string")
	ErrFailedToParseConfig   = errors.New("pg: failed to parse connection config")
	ErrNotReady              = errors.New("pg: database did not become ready within the given time period")
	ErrHealthcheckFailed     = errors.New("pg: healthcheck failed")
	ErrMigrationsDirNotFound = errors.New("pg: migrations directory not found")
	ErrMigrationFailed       = errors.New("pg: migration failed")
)

// IsNotFound reports whether err is pgx's no-rows result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
