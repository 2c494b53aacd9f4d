package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

// ValuationFilter filtros del reporte de valorización.
type ValuationFilter struct {
	Search     string // coincidencia parcial en el nombre, sin tildes ni mayúsculas
	CategoryID string
}

// ValuationRow un lote de precio de un material.
type ValuationRow struct {
	MaterialID   string
	MaterialName string
	Category     string
	Unit         string
	UnitPrice    decimal.Decimal
	Quantity     int64
	Subtotal     decimal.Decimal
}

// ValuationReport filas por lote y totales de los materiales que pasan el filtro.
type ValuationReport struct {
	Policy     string
	Rows       []ValuationRow
	TotalValue decimal.Decimal
	TotalItems int64
}

// ValuationUseCase valoriza el stock vigente agrupando las entradas por precio.
type ValuationUseCase struct {
	materialRepo repository.MaterialRepository
	movementRepo repository.MovementRepository
	policy       inventory.ValuationPolicy
}

// NewValuationUseCase construye el caso de uso. policy nil = FIFO.
func NewValuationUseCase(
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
	policy inventory.ValuationPolicy,
) *ValuationUseCase {
	if policy == nil {
		policy = inventory.FIFOPolicy{}
	}
	return &ValuationUseCase{materialRepo: materialRepo, movementRepo: movementRepo, policy: policy}
}

// Valuate arma el reporte financiero del propietario.
// La categoría se filtra en el repositorio; la búsqueda por nombre se aplica aquí.
func (uc *ValuationUseCase) Valuate(ctx context.Context, ownerID string, filter ValuationFilter) (*ValuationReport, error) {
	materials, err := uc.materialRepo.ListByOwner(ctx, ownerID, repository.MaterialFilter{CategoryID: filter.CategoryID})
	if err != nil {
		return nil, fmt.Errorf("valorización: listar materiales: %w", err)
	}
	entries, err := uc.movementRepo.ListEntriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("valorización: listar entradas: %w", err)
	}

	byMaterial := make(map[string][]*entity.Movement)
	for _, e := range entries {
		byMaterial[e.MaterialID] = append(byMaterial[e.MaterialID], e)
	}

	match := nameMatcher(filter.Search)
	report := &ValuationReport{
		Policy:     uc.policy.Name(),
		Rows:       []ValuationRow{},
		TotalValue: decimal.Zero,
	}
	for _, m := range materials {
		if !match(m.Name) {
			continue
		}
		for _, lot := range uc.policy.Attribute(m.CurrentStock, byMaterial[m.ID], m.UnitPrice) {
			report.Rows = append(report.Rows, ValuationRow{
				MaterialID:   m.ID,
				MaterialName: m.Name,
				Category:     m.CategoryName,
				Unit:         m.Unit,
				UnitPrice:    lot.UnitPrice,
				Quantity:     lot.Quantity,
				Subtotal:     lot.Subtotal,
			})
			report.TotalValue = report.TotalValue.Add(lot.Subtotal)
			report.TotalItems += lot.Quantity
		}
	}
	return report, nil
}
