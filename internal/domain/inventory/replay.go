package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// Delta regla de variación de stock de un movimiento:
// ENTRY → +q; EXIT → -q; EXIT devolución → +q.
func Delta(m *entity.Movement) int64 {
	if m.Type == entity.MovementTypeEXIT && !m.IsReturn {
		return -m.Quantity
	}
	return m.Quantity
}

// Overflows indica que sumar delta a stock excede int64.
func Overflows(stock, delta int64) bool {
	return delta > 0 && stock > math.MaxInt64-delta
}

// Less orden canónico de reproducción: (EffectiveDate, CreatedAt, ID) ascendente.
func Less(a, b *entity.Movement) bool {
	if !a.EffectiveDate.Equal(b.EffectiveDate) {
		return a.EffectiveDate.Before(b.EffectiveDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortCanonical ordena en sitio según Less.
func SortCanonical(movements []*entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool { return Less(movements[i], movements[j]) })
}

// ReplayResult resultado de reproducir el historial de un material.
type ReplayResult struct {
	Stock   int64
	Applied int
	// Clamped indica que en algún paso el acumulado habría sido negativo o habría
	// desbordado (historial corrupto).
	Clamped bool
}

// Replay pliega los movimientos en orden canónico desde 0 aplicando Delta,
// recortando el acumulado en 0 después de cada paso y saturándolo en MaxInt64.
// No modifica el slice recibido.
func Replay(movements []*entity.Movement) ReplayResult {
	ordered := make([]*entity.Movement, len(movements))
	copy(ordered, movements)
	SortCanonical(ordered)

	var res ReplayResult
	for _, m := range ordered {
		d := Delta(m)
		if Overflows(res.Stock, d) {
			res.Stock = math.MaxInt64
			res.Clamped = true
			res.Applied++
			continue
		}
		res.Stock += d
		if res.Stock < 0 {
			res.Stock = 0
			res.Clamped = true
		}
		res.Applied++
	}
	return res
}
