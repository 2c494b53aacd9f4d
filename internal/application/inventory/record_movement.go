package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

// RecordMovementUseCase registra movimientos (ENTRY, EXIT, devolución) de forma transaccional
// con bloqueo de fila del material (SELECT FOR UPDATE) y Commit/Rollback.
type RecordMovementUseCase struct {
	txRunner TxRunner
	cache    CacheInvalidator
	metrics  *metrics.Ledger
	log      zerolog.Logger
	now      func() time.Time
}

// NewRecordMovementUseCase construye el caso de uso. cache y m pueden ser nil.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	cache CacheInvalidator,
	m *metrics.Ledger,
	log zerolog.Logger,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		txRunner: txRunner,
		cache:    cache,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *RecordMovementUseCase) WithClock(now func() time.Time) *RecordMovementUseCase {
	uc.now = now
	return uc
}

// RecordMovementInput entrada para registrar un movimiento.
// ENTRY: UnitPrice y SupplierID obligatorios. EXIT: EmployeeID o ThirdPartyID.
// EffectiveDate en cero = hoy.
type RecordMovementInput struct {
	OwnerID       string
	UserID        string
	MaterialID    string
	Type          string
	Quantity      int64
	UnitPrice     *decimal.Decimal
	IsReturn      bool
	EffectiveDate time.Time
	CostCenterID  string
	SupplierID    string
	EmployeeID    string
	ThirdPartyID  string
	Notes         string
}

// Record valida la entrada, bloquea la fila del material, comprueba el stock disponible,
// inserta el hecho, aplica el delta a la proyección y, en ENTRY, fija el precio unitario.
// Todo en una transacción: no existe hecho sin su actualización de stock ni al revés.
func (uc *RecordMovementUseCase) Record(ctx context.Context, in RecordMovementInput) (*entity.Movement, error) {
	mov, err := uc.build(in)
	if err != nil {
		uc.metrics.MovementRejected(rejectReason(err))
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(materialRepo repository.MaterialRepository, movementRepo repository.MovementRepository) error {
		material, err := materialRepo.GetForUpdate(ctx, in.OwnerID, in.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrMaterialNotFound
		}

		delta := inventory.Delta(mov)
		if inventory.Overflows(material.CurrentStock, delta) {
			return &domain.ValidationError{Field: "quantity", Reason: "el stock resultante excede el máximo representable"}
		}
		if delta < 0 && material.CurrentStock+delta < 0 {
			return &domain.InsufficientStockError{
				MaterialID: material.ID,
				Requested:  mov.Quantity,
				Available:  material.CurrentStock,
			}
		}

		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		if _, err := materialRepo.ApplyStock(ctx, material.ID, delta); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return &domain.InsufficientStockError{
					MaterialID: material.ID,
					Requested:  mov.Quantity,
					Available:  material.CurrentStock,
				}
			}
			return err
		}
		if mov.IsEntry() {
			return materialRepo.UpdateUnitPrice(ctx, material.ID, *mov.UnitPrice)
		}
		return nil
	})
	if err != nil {
		uc.metrics.MovementRejected(rejectReason(err))
		return nil, err
	}

	uc.metrics.MovementRecorded(movementKind(mov))
	uc.invalidate(ctx, in.OwnerID)
	uc.log.Info().
		Str("owner_id", mov.OwnerID).
		Str("material_id", mov.MaterialID).
		Str("movement_id", mov.ID).
		Str("type", mov.Type).
		Bool("is_return", mov.IsReturn).
		Int64("quantity", mov.Quantity).
		Msg("movimiento registrado")
	return mov, nil
}

// build valida la entrada y arma el hecho con id y marcas de tiempo.
func (uc *RecordMovementUseCase) build(in RecordMovementInput) (*entity.Movement, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, &domain.ValidationError{Field: "owner_id", Reason: "requerido"}
	}
	if strings.TrimSpace(in.MaterialID) == "" {
		return nil, &domain.ValidationError{Field: "material_id", Reason: "requerido"}
	}
	if in.Quantity <= 0 {
		return nil, &domain.InvalidQuantityError{Quantity: in.Quantity}
	}

	typ := strings.ToUpper(strings.TrimSpace(in.Type))
	switch typ {
	case entity.MovementTypeENTRY:
		if in.IsReturn {
			return nil, &domain.ValidationError{Field: "is_return", Reason: "solo aplica a salidas"}
		}
		if in.UnitPrice == nil {
			return nil, &domain.ValidationError{Field: "unit_price", Reason: "obligatorio en entradas"}
		}
		if in.UnitPrice.IsNegative() {
			return nil, &domain.ValidationError{Field: "unit_price", Reason: "no puede ser negativo"}
		}
		if in.SupplierID == "" {
			return nil, &domain.ValidationError{Field: "supplier_id", Reason: "obligatorio en entradas"}
		}
	case entity.MovementTypeEXIT:
		if in.EmployeeID == "" && in.ThirdPartyID == "" {
			return nil, &domain.ValidationError{Field: "employee_id", Reason: "una salida requiere empleado o tercero"}
		}
		if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
			return nil, &domain.ValidationError{Field: "unit_price", Reason: "no puede ser negativo"}
		}
	default:
		return nil, &domain.ValidationError{Field: "type", Reason: "debe ser ENTRY o EXIT"}
	}

	now := uc.now()
	effective := in.EffectiveDate
	if effective.IsZero() {
		effective = now
	}
	y, m, d := effective.Date()

	return &entity.Movement{
		ID:            uuid.NewString(),
		OwnerID:       in.OwnerID,
		MaterialID:    in.MaterialID,
		Type:          typ,
		IsReturn:      in.IsReturn,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		EffectiveDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CreatedAt:     now.UTC(),
		SupplierID:    in.SupplierID,
		EmployeeID:    in.EmployeeID,
		ThirdPartyID:  in.ThirdPartyID,
		CostCenterID:  in.CostCenterID,
		Notes:         in.Notes,
		CreatedBy:     in.UserID,
	}, nil
}

func (uc *RecordMovementUseCase) invalidate(ctx context.Context, ownerID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, ownerID); err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Msg("no se pudo invalidar la caché del dashboard")
	}
}

func movementKind(m *entity.Movement) string {
	switch {
	case m.IsEntry():
		return "entry"
	case m.IsReturn:
		return "return"
	default:
		return "exit"
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrMaterialNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "internal"
	}
}
