package repository

import (
	"context"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// MovementRepository puerto del Fact Store: solo inserción y lectura, nunca update ni delete.
// Los listados respetan el orden canónico (effective_date, created_at, id) ascendente.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	ListByMaterial(ctx context.Context, ownerID, materialID string) ([]*entity.Movement, error)
	// ListEntriesByOwner devuelve todas las entradas (ENTRY) del propietario, para valorización.
	ListEntriesByOwner(ctx context.Context, ownerID string) ([]*entity.Movement, error)
}
