package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// MaterialFilter filtros de listado de materiales de un propietario.
type MaterialFilter struct {
	CategoryID   string
	OnlyCritical bool // current_stock < minimum_stock
}

// MaterialRepository puerto de persistencia de materiales y de su proyección de stock.
// GetByID y GetForUpdate devuelven (nil, nil) si el material no existe para ese propietario.
type MaterialRepository interface {
	GetByID(ctx context.Context, ownerID, id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila del material (SELECT FOR UPDATE); solo dentro de una transacción.
	GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Material, error)
	ListByOwner(ctx context.Context, ownerID string, filter MaterialFilter) ([]*entity.Material, error)
	// ListOwnerIDs devuelve los propietarios con al menos un material (barrido de reconciliación).
	ListOwnerIDs(ctx context.Context) ([]string, error)

	// ApplyStock suma delta a current_stock y devuelve el valor nuevo.
	// Nunca deja el stock negativo: en ese caso devuelve domain.ErrInsufficientStock.
	ApplyStock(ctx context.Context, id string, delta int64) (int64, error)
	// SetStock sobrescribe current_stock (uso exclusivo de la reconciliación).
	SetStock(ctx context.Context, id string, stock int64) error
	UpdateUnitPrice(ctx context.Context, id string, price decimal.Decimal) error
}
