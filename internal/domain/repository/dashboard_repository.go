package repository

import (
	"context"
	"time"
)

// MovementCounts conteo de movimientos de un día por tipo.
type MovementCounts struct {
	Entries int64
	Exits   int64 // incluye devoluciones
	Returns int64
}

// DashboardRepository consultas de solo lectura para el tablero.
type DashboardRepository interface {
	CountMaterials(ctx context.Context, ownerID string) (int64, error)
	CountMovementsOn(ctx context.Context, ownerID string, day time.Time) (MovementCounts, error)
}
