package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translateError(nil))
	})

	t.Run("no rows is not found", func(t *testing.T) {
		assert.ErrorIs(t, translateError(pgx.ErrNoRows), ErrNotFound)
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		err := translateError(&pgconn.PgError{Code: "23505", ConstraintName: "attorneys_email_key"})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, err.Error(), "attorneys_email_key")
	})

	t.Run("other SQL errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42P01"}
		err := translateError(pgErr)
		assert.NotErrorIs(t, err, ErrUnavailable)
		var got *pgconn.PgError
		assert.ErrorAs(t, err, &got)
	})

	t.Run("connection failures are unavailable", func(t *testing.T) {
		err := translateError(errors.New("dial tcp: connection refused"))
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
