package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

// StockCorrection material cuya proyección no coincidía con el historial.
type StockCorrection struct {
	MaterialID     string
	Name           string
	PreviousStock  int64
	CorrectedStock int64
	Clamped        bool
}

// StockCheck material verificado sin diferencias.
type StockCheck struct {
	MaterialID string
	Name       string
	Stock      int64
	Clamped    bool
}

// ReconciliationFailure material que no pudo reconciliarse.
type ReconciliationFailure struct {
	MaterialID string
	Name       string
	Err        error
}

// ReconciliationReport resultado de una pasada. Checked cuenta los materiales verificados
// con éxito (corregidos o sin cambios); Failed los que fallaron.
type ReconciliationReport struct {
	OwnerID     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Checked     int
	Corrected   int
	Failed      int
	Corrections []StockCorrection
	Unchanged   []StockCheck
	Failures    []ReconciliationFailure
}

// ReconcileUseCase recalcula current_stock desde los hechos y corrige la deriva.
// No toca los movimientos; solo sobrescribe la proyección.
type ReconcileUseCase struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
	cache        CacheInvalidator
	metrics      *metrics.Ledger
	log          zerolog.Logger
	now          func() time.Time
}

// NewReconcileUseCase construye el caso de uso. cache y m pueden ser nil.
func NewReconcileUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	cache CacheInvalidator,
	m *metrics.Ledger,
	log zerolog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:     txRunner,
		materialRepo: materialRepo,
		cache:        cache,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// Reconcile reconcilia un material (materialID != nil) o todos los del propietario.
// Cada material se corrige en su propia transacción con la fila bloqueada; un fallo
// queda en el reporte y no detiene a los demás. Solo devuelve error si no puede
// listar los materiales o si el material pedido no existe.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, ownerID string, materialID *string) (*ReconciliationReport, error) {
	var materials []*entity.Material
	if materialID != nil {
		m, err := uc.materialRepo.GetByID(ctx, ownerID, *materialID)
		if err != nil {
			return nil, fmt.Errorf("reconciliación: material %s: %w", *materialID, err)
		}
		if m == nil {
			return nil, domain.ErrMaterialNotFound
		}
		materials = []*entity.Material{m}
	} else {
		list, err := uc.materialRepo.ListByOwner(ctx, ownerID, repository.MaterialFilter{})
		if err != nil {
			return nil, fmt.Errorf("reconciliación: listar materiales: %w", err)
		}
		materials = list
	}

	report := &ReconciliationReport{
		OwnerID:     ownerID,
		StartedAt:   uc.now(),
		Corrections: []StockCorrection{},
		Unchanged:   []StockCheck{},
		Failures:    []ReconciliationFailure{},
	}

	for _, m := range materials {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, ReconciliationFailure{MaterialID: m.ID, Name: m.Name, Err: err})
			report.Failed++
			continue
		}
		uc.reconcileOne(ctx, ownerID, m, report)
	}
	report.FinishedAt = uc.now()

	uc.metrics.ReconciliationResult(report.Corrected, report.Failed)
	if report.Corrected > 0 && uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, ownerID); err != nil {
			uc.log.Warn().Err(err).Str("owner_id", ownerID).Msg("no se pudo invalidar la caché del dashboard")
		}
	}
	uc.log.Info().
		Str("owner_id", ownerID).
		Int("checked", report.Checked).
		Int("corrected", report.Corrected).
		Int("failed", report.Failed).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("reconciliación terminada")
	return report, nil
}

// reconcileOne relee el material con FOR UPDATE dentro de la transacción: el valor de
// ListByOwner puede estar desactualizado frente a escritores concurrentes.
func (uc *ReconcileUseCase) reconcileOne(ctx context.Context, ownerID string, listed *entity.Material, report *ReconciliationReport) {
	var (
		correction *StockCorrection
		check      *StockCheck
	)
	err := uc.txRunner.Run(ctx, func(materialRepo repository.MaterialRepository, movementRepo repository.MovementRepository) error {
		correction, check = nil, nil

		m, err := materialRepo.GetForUpdate(ctx, ownerID, listed.ID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMaterialNotFound
		}
		movements, err := movementRepo.ListByMaterial(ctx, ownerID, m.ID)
		if err != nil {
			return err
		}

		res := inventory.Replay(movements)
		if res.Stock == m.CurrentStock {
			check = &StockCheck{MaterialID: m.ID, Name: m.Name, Stock: m.CurrentStock, Clamped: res.Clamped}
			return nil
		}
		if err := materialRepo.SetStock(ctx, m.ID, res.Stock); err != nil {
			return err
		}
		correction = &StockCorrection{
			MaterialID:     m.ID,
			Name:           m.Name,
			PreviousStock:  m.CurrentStock,
			CorrectedStock: res.Stock,
			Clamped:        res.Clamped,
		}
		return nil
	})

	switch {
	case err != nil:
		uc.log.Error().Err(err).Str("owner_id", ownerID).Str("material_id", listed.ID).Msg("reconciliación de material fallida")
		report.Failures = append(report.Failures, ReconciliationFailure{MaterialID: listed.ID, Name: listed.Name, Err: err})
		report.Failed++
	case correction != nil:
		uc.log.Warn().
			Str("owner_id", ownerID).
			Str("material_id", correction.MaterialID).
			Int64("previous_stock", correction.PreviousStock).
			Int64("corrected_stock", correction.CorrectedStock).
			Bool("clamped", correction.Clamped).
			Msg("deriva de stock detectada y corregida")
		report.Corrections = append(report.Corrections, *correction)
		report.Corrected++
		report.Checked++
	case check != nil:
		if check.Clamped {
			uc.log.Warn().Str("owner_id", ownerID).Str("material_id", check.MaterialID).Msg("historial con acumulado negativo")
		}
		report.Unchanged = append(report.Unchanged, *check)
		report.Checked++
	}
}
