package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovementTypeENTRY = "ENTRY" // entrada (proveedor)
	MovementTypeEXIT  = "EXIT"  // salida (empleado o tercero); con IsReturn es devolución
)

// Movement es un hecho inmutable del ledger: una vez creado no se actualiza ni se borra.
type Movement struct {
	ID            string
	OwnerID       string
	MaterialID    string
	Type          string
	IsReturn      bool
	Quantity      int64
	UnitPrice     *decimal.Decimal // obligatorio en ENTRY
	EffectiveDate time.Time        // fecha de negocio indicada por el usuario
	CreatedAt     time.Time        // desempate del orden canónico
	SupplierID    string
	EmployeeID    string
	ThirdPartyID  string
	CostCenterID  string
	Notes         string
	CreatedBy     string
}

// IsEntry indica si el movimiento es una entrada.
func (m *Movement) IsEntry() bool { return m.Type == MovementTypeENTRY }
