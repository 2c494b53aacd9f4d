package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para el tablero.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// CountMaterials total de materiales del propietario.
func (r *DashboardRepo) CountMaterials(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM materials WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard.CountMaterials: %w", err)
	}
	return n, nil
}

// CountMovementsOn movimientos con fecha de negocio = day, por tipo.
// Las devoluciones cuentan como salidas y además en Returns.
func (r *DashboardRepo) CountMovementsOn(ctx context.Context, ownerID string, day time.Time) (repository.MovementCounts, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE type = 'ENTRY')                AS entries,
	    COUNT(*) FILTER (WHERE type = 'EXIT')                 AS exits,
	    COUNT(*) FILTER (WHERE type = 'EXIT' AND is_return)   AS returns
	FROM movements
	WHERE owner_id = $1
	  AND effective_date = $2`

	var c repository.MovementCounts
	if err := r.pool.QueryRow(ctx, query, ownerID, dateOnly(day)).Scan(&c.Entries, &c.Exits, &c.Returns); err != nil {
		return c, fmt.Errorf("dashboard.CountMovementsOn: %w", err)
	}
	return c, nil
}
