package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// AverageEntryCost pliega CostCalculator sobre las entradas en orden canónico.
func AverageEntryCost(entries []*entity.Movement, fallback decimal.Decimal) decimal.Decimal {
	qty := decimal.Zero
	cost := decimal.Zero
	for _, e := range onlyEntries(entries) {
		q := decimal.NewFromInt(e.Quantity)
		cost = CostCalculator(qty, cost, q, entryPrice(e, fallback))
		qty = qty.Add(q)
	}
	if qty.IsZero() {
		return fallback
	}
	return cost
}
