package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material del almacén dentro de un propietario (tenant).
// CurrentStock es la proyección derivada de los movimientos; solo la escriben el
// registro de movimientos y la reconciliación.
type Material struct {
	ID           string
	OwnerID      string
	Name         string
	CategoryID   string
	CategoryName string // solo lectura (join con categories)
	Unit         string // "unidad", "kg", ...
	CurrentStock int64
	MinimumStock int64
	UnitPrice    decimal.Decimal // precio de la entrada más reciente
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsCritical indica stock por debajo del mínimo de reorden.
func (m *Material) IsCritical() bool {
	return m.CurrentStock < m.MinimumStock
}
