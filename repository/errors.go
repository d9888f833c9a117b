package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the identifier does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a duplicate write or a lost status race.
	ErrConflict = errors.New("record conflict")
	// ErrUnavailable indicates a transient backing-service failure.
	ErrUnavailable = errors.New("database unavailable")
)

const uniqueViolationCode = "23505"

// translateError maps pgx errors onto the repository error taxonomy.
// Connection-level failures surface as ErrUnavailable so handlers can
// answer 503; SQL-level errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
