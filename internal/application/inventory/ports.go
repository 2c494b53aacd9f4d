package inventory

import (
	"context"

	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el hecho y la actualización de la proyección se confirman juntos o no se confirman.
// Los conflictos de serialización o deadlock se reintentan dentro de Run; agotados los
// reintentos devuelve *domain.ConcurrencyConflictError.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		movementRepo repository.MovementRepository,
	) error) error
}

// CacheInvalidator descarta vistas derivadas de un propietario tras un cambio de stock.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}
