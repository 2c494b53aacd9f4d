package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo Fact Store sobre PostgreSQL: solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, owner_id, material_id, type, is_return, quantity, unit_price, effective_date, created_at,
	supplier_id, employee_id, third_party_id, cost_center_id, notes, created_by`

// orden canónico de reproducción
const movementOrder = ` ORDER BY effective_date, created_at, id`

func dateOnly(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.OwnerID, m.MaterialID, m.Type, m.IsReturn, m.Quantity, m.UnitPrice,
		dateOnly(m.EffectiveDate), m.CreatedAt,
		nullable(m.SupplierID), nullable(m.EmployeeID), nullable(m.ThirdPartyID),
		nullable(m.CostCenterID), nullable(m.Notes), nullable(m.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create movement: id %s duplicado: %w", m.ID, err)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// ListByMaterial historial completo del material en orden canónico.
func (r *MovementRepo) ListByMaterial(ctx context.Context, ownerID, materialID string) ([]*entity.Movement, error) {
	if !isUUID(materialID) {
		return nil, nil
	}
	query := `SELECT` + movementColumns + ` FROM movements
		WHERE owner_id = $1 AND material_id = $2` + movementOrder
	return r.list(ctx, query, ownerID, materialID)
}

// ListEntriesByOwner entradas del propietario en orden canónico.
func (r *MovementRepo) ListEntriesByOwner(ctx context.Context, ownerID string) ([]*entity.Movement, error) {
	query := `SELECT` + movementColumns + ` FROM movements
		WHERE owner_id = $1 AND type = 'ENTRY'` + movementOrder
	return r.list(ctx, query, ownerID)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m                                  entity.Movement
		price                              decimal.NullDecimal
		effective                          pgtype.Date
		supplier, employee, third, costCtr *string
		notes, createdBy                   *string
	)
	err := row.Scan(
		&m.ID, &m.OwnerID, &m.MaterialID, &m.Type, &m.IsReturn, &m.Quantity, &price, &effective, &m.CreatedAt,
		&supplier, &employee, &third, &costCtr, &notes, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Decimal
		m.UnitPrice = &p
	}
	m.EffectiveDate = effective.Time
	m.SupplierID = deref(supplier)
	m.EmployeeID = deref(employee)
	m.ThirdPartyID = deref(third)
	m.CostCenterID = deref(costCtr)
	m.Notes = deref(notes)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
