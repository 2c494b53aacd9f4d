package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

const retryBackoff = 20 * time.Millisecond

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + FOR UPDATE).
// Ante 40001/40P01 repite la transacción completa hasta maxRetries veces además del primer intento.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	metrics    *metrics.Ledger
}

// NewTxRunner construye el runner con el pool. maxRetries < 0 se toma como 0.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, m *metrics.Ledger) *TxRunner {
	return &TxRunner{pool: pool, maxRetries: max(maxRetries, 0), metrics: m}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
) error) error {
	return withRetry(ctx, r.maxRetries, r.metrics, func() error { return r.runOnce(ctx, fn) })
}

// withRetry ejecuta attempt una vez y lo repite hasta maxRetries veces mientras falle
// con un error reintentable.
func withRetry(ctx context.Context, maxRetries int, m *metrics.Ledger, attempt func() error) error {
	attempts := maxRetries + 1
	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := attempt()
		if err == nil || !isRetryable(err) {
			return err
		}
		lastErr = err
		if i == attempts {
			break
		}
		m.TxRetried()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i) * retryBackoff):
		}
	}
	return &domain.ConcurrencyConflictError{Attempts: attempts, Err: lastErr}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMaterialRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
