package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/internal/domain"
)

func TestWithRetry_ReintentosSeSumanAlPrimerIntento(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, nil, func() error {
		calls++
		return &pgconn.PgError{Code: codeSerializationFailure}
	})

	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, conflict.Attempts)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestWithRetry_ExitoTrasDeadlock(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, nil, func() error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: codeDeadlockDetected}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_SinReintentos(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 0, nil, func() error {
		calls++
		return &pgconn.PgError{Code: codeSerializationFailure}
	})

	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ErrorNoReintentable(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := withRetry(context.Background(), 3, nil, func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
