package inventory

import (
	"context"

	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

// StockUseCase lecturas de la proyección y del historial de un material.
type StockUseCase struct {
	materialRepo repository.MaterialRepository
	movementRepo repository.MovementRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(materialRepo repository.MaterialRepository, movementRepo repository.MovementRepository) *StockUseCase {
	return &StockUseCase{materialRepo: materialRepo, movementRepo: movementRepo}
}

// GetCurrentStock devuelve current_stock del material (lectura O(1) de la proyección).
func (uc *StockUseCase) GetCurrentStock(ctx context.Context, ownerID, materialID string) (int64, error) {
	m, err := uc.material(ctx, ownerID, materialID)
	if err != nil {
		return 0, err
	}
	return m.CurrentStock, nil
}

// ListMovements devuelve el historial del material en orden canónico.
func (uc *StockUseCase) ListMovements(ctx context.Context, ownerID, materialID string) ([]*entity.Movement, error) {
	if _, err := uc.material(ctx, ownerID, materialID); err != nil {
		return nil, err
	}
	return uc.movementRepo.ListByMaterial(ctx, ownerID, materialID)
}

func (uc *StockUseCase) material(ctx context.Context, ownerID, materialID string) (*entity.Material, error) {
	m, err := uc.materialRepo.GetByID(ctx, ownerID, materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMaterialNotFound
	}
	return m, nil
}
