package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// effective_date en formato YYYY-MM-DD; vacío = hoy.
type RegisterMovementRequest struct {
	MaterialID    string           `json:"material_id" validate:"required"`
	Type          string           `json:"type" validate:"required,oneof=ENTRY EXIT entry exit"`
	Quantity      int64            `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	IsReturn      bool             `json:"is_return"`
	EffectiveDate string           `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CostCenterID  string           `json:"cost_center_id,omitempty"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	EmployeeID    string           `json:"employee_id,omitempty"`
	ThirdPartyID  string           `json:"third_party_id,omitempty"`
	Notes         string           `json:"notes,omitempty" validate:"max=500"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID            string           `json:"id"`
	MaterialID    string           `json:"material_id"`
	Type          string           `json:"type"`
	IsReturn      bool             `json:"is_return"`
	Quantity      int64            `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	EffectiveDate string           `json:"effective_date"`
	CreatedAt     time.Time        `json:"created_at"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	EmployeeID    string           `json:"employee_id,omitempty"`
	ThirdPartyID  string           `json:"third_party_id,omitempty"`
	CostCenterID  string           `json:"cost_center_id,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// StockResponse respuesta de GET /api/inventory/materials/:id/stock.
type StockResponse struct {
	MaterialID   string `json:"material_id"`
	CurrentStock int64  `json:"current_stock"`
}

// StockCorrectionDTO material cuyo stock difería del historial y fue corregido.
type StockCorrectionDTO struct {
	MaterialID     string `json:"material_id"`
	Name           string `json:"name"`
	PreviousStock  int64  `json:"previous_stock"`
	CorrectedStock int64  `json:"corrected_stock"`
	// Clamped: el historial tuvo un acumulado negativo en algún punto (datos corruptos).
	Clamped bool `json:"clamped,omitempty"`
}

// StockCheckDTO material verificado sin diferencias.
type StockCheckDTO struct {
	MaterialID string `json:"material_id"`
	Name       string `json:"name"`
	Stock      int64  `json:"stock"`
	Clamped    bool   `json:"clamped,omitempty"`
}

// ReconciliationFailureDTO material que no pudo reconciliarse (no aborta la pasada).
type ReconciliationFailureDTO struct {
	MaterialID string `json:"material_id"`
	Name       string `json:"name"`
	Error      string `json:"error"`
}

// ReconciliationReportDTO resumen de una pasada de reconciliación para revisión del operador.
type ReconciliationReportDTO struct {
	OwnerID     string                     `json:"owner_id"`
	StartedAt   time.Time                  `json:"started_at"`
	FinishedAt  time.Time                  `json:"finished_at"`
	Checked     int                        `json:"checked"`
	Corrected   int                        `json:"corrected"`
	Failed      int                        `json:"failed"`
	Corrections []StockCorrectionDTO       `json:"corrections"`
	Unchanged   []StockCheckDTO            `json:"unchanged"`
	Failures    []ReconciliationFailureDTO `json:"failures"`
}

// ValuationRowDTO un lote de precio de un material.
type ValuationRowDTO struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// FinancialValuationDTO respuesta de GET /api/inventory/valuation.
type FinancialValuationDTO struct {
	Policy     string            `json:"policy"`
	Rows       []ValuationRowDTO `json:"rows"`
	TotalValue decimal.Decimal   `json:"total_value"`
	TotalItems int64             `json:"total_items"`
}
