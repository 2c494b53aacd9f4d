package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
// current_stock y unit_price son la proyección: solo los escriben ApplyStock, SetStock y UpdateUnitPrice.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `
	m.id, m.owner_id, m.name, COALESCE(m.category_id::TEXT, ''), COALESCE(c.name, ''),
	m.unit, m.current_stock, m.minimum_stock, m.unit_price, m.created_at, m.updated_at`

const materialFrom = `
	FROM materials m
	LEFT JOIN categories c ON c.id = m.category_id`

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(
		&m.ID, &m.OwnerID, &m.Name, &m.CategoryID, &m.CategoryName,
		&m.Unit, &m.CurrentStock, &m.MinimumStock, &m.UnitPrice, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene un material del propietario; (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Material, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT` + materialColumns + materialFrom + `
		WHERE m.id = $1 AND m.owner_id = $2`
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene el material y bloquea su fila (SELECT FOR UPDATE OF m).
// Todo escritor de current_stock pasa por aquí antes de validar.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Material, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT` + materialColumns + materialFrom + `
		WHERE m.id = $1 AND m.owner_id = $2
		FOR UPDATE OF m`
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isNoRow(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material for update: %w", err)
	}
	return m, nil
}

// ListByOwner lista materiales del propietario ordenados por nombre.
func (r *MaterialRepo) ListByOwner(ctx context.Context, ownerID string, filter repository.MaterialFilter) ([]*entity.Material, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + materialColumns + materialFrom + `
		WHERE m.owner_id = $1`)
	args := []any{ownerID}
	if filter.CategoryID != "" {
		if !isUUID(filter.CategoryID) {
			return nil, nil
		}
		args = append(args, filter.CategoryID)
		fmt.Fprintf(&sb, " AND m.category_id = $%d", len(args))
	}
	if filter.OnlyCritical {
		sb.WriteString(" AND m.current_stock < m.minimum_stock")
	}
	sb.WriteString(" ORDER BY m.name, m.id")

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListOwnerIDs propietarios con al menos un material.
func (r *MaterialRepo) ListOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT owner_id FROM materials ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// ApplyStock suma delta a current_stock. La guarda del WHERE impide dejarlo negativo.
func (r *MaterialRepo) ApplyStock(ctx context.Context, id string, delta int64) (int64, error) {
	query := `
		UPDATE materials
		SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1 AND current_stock + $2 >= 0
		RETURNING current_stock`
	var stock int64
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("apply stock: %w", err)
	}
	return stock, nil
}

// SetStock sobrescribe current_stock (reconciliación).
func (r *MaterialRepo) SetStock(ctx context.Context, id string, stock int64) error {
	if stock < 0 {
		return domain.ErrInsufficientStock
	}
	tag, err := r.q.Exec(ctx, `UPDATE materials SET current_stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// UpdateUnitPrice fija el precio de la entrada más reciente.
func (r *MaterialRepo) UpdateUnitPrice(ctx context.Context, id string, price decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET unit_price = $2, updated_at = now() WHERE id = $1`, id, price)
	if err != nil {
		return fmt.Errorf("update unit price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}
