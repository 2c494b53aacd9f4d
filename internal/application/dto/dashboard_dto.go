package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalMaterials int64 `json:"total_materials"`

	// Movimientos con fecha de negocio = hoy (hora del servidor)
	EntriesToday int64 `json:"entries_today"`
	ExitsToday   int64 `json:"exits_today"`   // incluye devoluciones
	ReturnsToday int64 `json:"returns_today"` // subconjunto de ExitsToday

	CriticalItems     int64                 `json:"critical_items"` // current_stock < minimum_stock
	LowStockMaterials []LowStockMaterialDTO `json:"low_stock_materials"`

	DateLabel string `json:"date_label"` // ej: "18 de Octubre 2026"
}

// LowStockMaterialDTO material bajo el mínimo, con la sugerencia de reposición.
type LowStockMaterialDTO struct {
	MaterialID        string          `json:"material_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	CurrentStock      int64           `json:"current_stock"`
	MinimumStock      int64           `json:"minimum_stock"`
	SuggestedOrderQty int64           `json:"suggested_order_qty"`  // ceil(MinimumStock*1.5) - CurrentStock
	EstimatedCost     decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitPrice
}
