// Package analytics contiene los casos de uso de solo lectura para el tablero del almacén.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

// reorderFactor stock ideal = mínimo × 1.5; la sugerencia de pedido completa hasta ese valor.
const reorderFactor = 1.5

// SummaryCache caché opcional del resumen por propietario. Get devuelve resumen nil si no hay
// entrada, junto con la generación que Set debe recibir; Set descarta la escritura si hubo
// una invalidación entretanto.
type SummaryCache interface {
	Get(ctx context.Context, ownerID string) (*dto.DashboardSummaryDTO, int64, error)
	Set(ctx context.Context, ownerID string, gen int64, summary *dto.DashboardSummaryDTO) error
}

// DashboardUseCase genera el resumen del día: materiales, movimientos de hoy y críticos.
//
// Fuente de datos: DashboardRepository (conteos) y MaterialRepository (proyección de stock).
// No escribe nada; la caché se invalida desde los casos de uso que modifican stock.
type DashboardUseCase struct {
	dashboardRepo repository.DashboardRepository
	materialRepo  repository.MaterialRepository
	cache         SummaryCache
	log           zerolog.Logger
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewDashboardUseCase(
	dashboardRepo repository.DashboardRepository,
	materialRepo repository.MaterialRepository,
	cache SummaryCache,
	log zerolog.Logger,
) *DashboardUseCase {
	return &DashboardUseCase{
		dashboardRepo: dashboardRepo,
		materialRepo:  materialRepo,
		cache:         cache,
		log:           log,
		now:           time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO para el propietario indicado.
//
// Tres consultas en paralelo:
//  1. CountMaterials              → TotalMaterials
//  2. CountMovementsOn(hoy)       → EntriesToday, ExitsToday, ReturnsToday
//  3. ListByOwner(OnlyCritical)   → CriticalItems + LowStockMaterials
func (uc *DashboardUseCase) GetSummary(ctx context.Context, ownerID string) (*dto.DashboardSummaryDTO, error) {
	var (
		gen       int64
		cacheable bool
	)
	if uc.cache != nil {
		cached, g, err := uc.cache.Get(ctx, ownerID)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("owner_id", ownerID).Msg("dashboard: lectura de caché fallida")
		case cached != nil:
			return cached, nil
		default:
			gen, cacheable = g, true
		}
	}

	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		total    int64
		counts   repository.MovementCounts
		critical []*entity.Material
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.dashboardRepo.CountMaterials(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("dashboard: total de materiales: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		c, err := uc.dashboardRepo.CountMovementsOn(gctx, ownerID, today)
		if err != nil {
			return fmt.Errorf("dashboard: movimientos de hoy: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		list, err := uc.materialRepo.ListByOwner(gctx, ownerID, repository.MaterialFilter{OnlyCritical: true})
		if err != nil {
			return fmt.Errorf("dashboard: materiales críticos: %w", err)
		}
		critical = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lowStock := make([]dto.LowStockMaterialDTO, 0, len(critical))
	for _, m := range critical {
		lowStock = append(lowStock, toLowStock(m))
	}

	summary := &dto.DashboardSummaryDTO{
		TotalMaterials:    total,
		EntriesToday:      counts.Entries,
		ExitsToday:        counts.Exits,
		ReturnsToday:      counts.Returns,
		CriticalItems:     int64(len(critical)),
		LowStockMaterials: lowStock,
		DateLabel:         dayLabel(now),
	}

	if cacheable {
		if err := uc.cache.Set(ctx, ownerID, gen, summary); err != nil {
			uc.log.Warn().Err(err).Str("owner_id", ownerID).Msg("dashboard: escritura de caché fallida")
		}
	}
	return summary, nil
}

// toLowStock arma la fila de alerta con la cantidad sugerida de reposición.
func toLowStock(m *entity.Material) dto.LowStockMaterialDTO {
	ideal := int64(math.Ceil(float64(m.MinimumStock) * reorderFactor))
	suggested := ideal - m.CurrentStock
	if suggested < 0 {
		suggested = 0
	}
	return dto.LowStockMaterialDTO{
		MaterialID:        m.ID,
		Name:              m.Name,
		Category:          m.CategoryName,
		Unit:              m.Unit,
		CurrentStock:      m.CurrentStock,
		MinimumStock:      m.MinimumStock,
		SuggestedOrderQty: suggested,
		EstimatedCost:     m.UnitPrice.Mul(decimal.NewFromInt(suggested)).Round(2),
	}
}

// dayLabel devuelve una etiqueta legible del día, ej: "18 de Octubre 2026".
func dayLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%d de %s %d", t.Day(), months[t.Month()-1], t.Year())
}
