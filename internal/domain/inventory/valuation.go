package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
)

// Nombres de política de valorización (LEDGER_VALUATION_POLICY).
const (
	PolicyFIFO    = "fifo"
	PolicyLatest  = "latest"
	PolicyAverage = "average"
)

// ValuationPolicy atribuye el stock actual de un material a lotes de precio.
// entries son los movimientos del material (se ignoran los que no son ENTRY);
// fallback es el precio guardado en el material, usado para datos heredados sin entradas.
// La suma de cantidades de los lotes devueltos es siempre igual a stock.
type ValuationPolicy interface {
	Name() string
	Attribute(stock int64, entries []*entity.Movement, fallback decimal.Decimal) []Lot
}

// PolicyByName resuelve la política configurada. Vacío = fifo.
func PolicyByName(name string) (ValuationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFIFO:
		return FIFOPolicy{}, nil
	case PolicyLatest:
		return LatestPricePolicy{}, nil
	case PolicyAverage:
		return AverageCostPolicy{}, nil
	}
	return nil, fmt.Errorf("política de valorización desconocida: %q", name)
}

// FIFOPolicy las salidas consumen primero las unidades más antiguas; el stock vigente
// se atribuye a las entradas más recientes, recorriéndolas de la última a la primera.
// El excedente sobre lo ingresado (devoluciones) va al lote del precio más reciente.
// Los lotes agotados no aparecen.
type FIFOPolicy struct{}

func (FIFOPolicy) Name() string { return PolicyFIFO }

func (FIFOPolicy) Attribute(stock int64, entries []*entity.Movement, fallback decimal.Decimal) []Lot {
	if stock <= 0 {
		return nil
	}
	ordered := onlyEntries(entries)
	if len(ordered) == 0 {
		return []Lot{newLot(fallback, stock)}
	}

	groups, index := groupByPrice(ordered, fallback)
	attributed := make([]int64, len(groups))
	remaining := stock
	for i := len(ordered) - 1; i >= 0 && remaining > 0; i-- {
		e := ordered[i]
		take := min(e.Quantity, remaining)
		attributed[index[priceKey(entryPrice(e, fallback))]] += take
		remaining -= take
	}
	if remaining > 0 {
		last := ordered[len(ordered)-1]
		attributed[index[priceKey(entryPrice(last, fallback))]] += remaining
	}

	lots := make([]Lot, 0, len(groups))
	for i, g := range groups {
		if attributed[i] == 0 {
			continue
		}
		lots = append(lots, newLot(g.price, attributed[i]))
	}
	return lots
}

// LatestPricePolicy todo el stock al precio de la entrada más reciente (un único lote).
type LatestPricePolicy struct{}

func (LatestPricePolicy) Name() string { return PolicyLatest }

func (LatestPricePolicy) Attribute(stock int64, entries []*entity.Movement, fallback decimal.Decimal) []Lot {
	if stock <= 0 {
		return nil
	}
	price := fallback
	if ordered := onlyEntries(entries); len(ordered) > 0 {
		price = entryPrice(ordered[len(ordered)-1], fallback)
	}
	return []Lot{newLot(price, stock)}
}

// AverageCostPolicy todo el stock al costo promedio ponderado de las entradas (un único lote).
type AverageCostPolicy struct{}

func (AverageCostPolicy) Name() string { return PolicyAverage }

func (AverageCostPolicy) Attribute(stock int64, entries []*entity.Movement, fallback decimal.Decimal) []Lot {
	if stock <= 0 {
		return nil
	}
	price := AverageEntryCost(entries, fallback).Round(4)
	return []Lot{newLot(price, stock)}
}
