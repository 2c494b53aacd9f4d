package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// Lot agrupación derivada de entradas con el mismo precio unitario. No se persiste.
type Lot struct {
	UnitPrice decimal.Decimal
	Quantity  int64
	Subtotal  decimal.Decimal
}

// priceGroup lote antes de atribuir cantidad.
type priceGroup struct {
	price decimal.Decimal
}

// priceKey normaliza el precio para agrupar (35.5 y 35.50 son el mismo lote).
func priceKey(p decimal.Decimal) string {
	return p.String()
}

// entryPrice precio de una entrada; las entradas heredadas sin precio usan fallback.
func entryPrice(m *entity.Movement, fallback decimal.Decimal) decimal.Decimal {
	if m.UnitPrice == nil {
		return fallback
	}
	return *m.UnitPrice
}

// groupByPrice agrupa entradas (ya en orden canónico) por precio, en orden de primera aparición.
func groupByPrice(entries []*entity.Movement, fallback decimal.Decimal) ([]priceGroup, map[string]int) {
	groups := make([]priceGroup, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		p := entryPrice(e, fallback)
		k := priceKey(p)
		if _, ok := index[k]; !ok {
			index[k] = len(groups)
			groups = append(groups, priceGroup{price: p})
		}
	}
	return groups, index
}

func newLot(price decimal.Decimal, qty int64) Lot {
	return Lot{
		UnitPrice: price,
		Quantity:  qty,
		Subtotal:  price.Mul(decimal.NewFromInt(qty)).Round(2),
	}
}

// onlyEntries filtra ENTRY y devuelve una copia en orden canónico.
func onlyEntries(movements []*entity.Movement) []*entity.Movement {
	out := make([]*entity.Movement, 0, len(movements))
	for _, m := range movements {
		if m.IsEntry() {
			out = append(out, m)
		}
	}
	SortCanonical(out)
	return out
}
