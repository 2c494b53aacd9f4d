package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/memstore"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

const owner = "owner-1"

// tickingClock devuelve instantes crecientes para que created_at nunca empate.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type countingCache struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[ownerID]++
	return nil
}

func (c *countingCache) count(ownerID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[ownerID]
}

type fixture struct {
	store  *memstore.Store
	cache  *countingCache
	record *inventory.RecordMovementUseCase
	stock  *inventory.StockUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	cache := &countingCache{}
	m := metrics.New(prometheus.NewRegistry())
	record := inventory.NewRecordMovementUseCase(store, cache, m, zerolog.Nop()).
		WithClock(tickingClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	return &fixture{
		store:  store,
		cache:  cache,
		record: record,
		stock:  inventory.NewStockUseCase(store.Materials(), store.Movements()),
	}
}

func (f *fixture) addMaterial(id, name string) {
	f.store.AddMaterial(entity.Material{
		ID: id, OwnerID: owner, Name: name, CategoryID: "cat-1", CategoryName: "Abrasivos",
		Unit: "unidad", MinimumStock: 5, UnitPrice: decimal.Zero,
	})
}

func (f *fixture) currentStock(t *testing.T, id string) int64 {
	t.Helper()
	s, err := f.stock.GetCurrentStock(context.Background(), owner, id)
	require.NoError(t, err)
	return s
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func entryInput(materialID string, qty int64, unitPrice string) inventory.RecordMovementInput {
	return inventory.RecordMovementInput{
		OwnerID: owner, UserID: "user-1", MaterialID: materialID,
		Type: entity.MovementTypeENTRY, Quantity: qty, UnitPrice: price(unitPrice),
		SupplierID: "prov-1", EffectiveDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func exitInput(materialID string, qty int64, isReturn bool) inventory.RecordMovementInput {
	return inventory.RecordMovementInput{
		OwnerID: owner, UserID: "user-1", MaterialID: materialID,
		Type: entity.MovementTypeEXIT, Quantity: qty, IsReturn: isReturn,
		EmployeeID: "emp-1", EffectiveDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecord_EscenarioDiscoDeCorte(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("disco", "Disco de Corte")

	mov, err := f.record.Record(ctx, entryInput("disco", 20, "35.50"))
	require.NoError(t, err)
	assert.NotEmpty(t, mov.ID)
	assert.False(t, mov.CreatedAt.IsZero())
	assert.Equal(t, int64(20), f.currentStock(t, "disco"))

	_, err = f.record.Record(ctx, exitInput("disco", 2, false))
	require.NoError(t, err)
	assert.Equal(t, int64(18), f.currentStock(t, "disco"))

	_, err = f.record.Record(ctx, exitInput("disco", 1, true))
	require.NoError(t, err)
	assert.Equal(t, int64(19), f.currentStock(t, "disco"))

	material, err := f.store.Materials().GetByID(ctx, owner, "disco")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("35.50").Equal(material.UnitPrice))
	assert.Equal(t, 3, f.cache.count(owner))
}

func TestRecord_IdaYVueltaDejaElStockIgual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("m1", "Guantes")
	_, err := f.record.Record(ctx, entryInput("m1", 7, "2"))
	require.NoError(t, err)

	_, err = f.record.Record(ctx, entryInput("m1", 4, "3"))
	require.NoError(t, err)
	_, err = f.record.Record(ctx, exitInput("m1", 4, false))
	require.NoError(t, err)

	assert.Equal(t, int64(7), f.currentStock(t, "m1"))
}

func TestRecord_DevolucionSumaComoEntrada(t *testing.T) {
	f := newFixture(t)
	f.addMaterial("m1", "Casco")

	_, err := f.record.Record(context.Background(), exitInput("m1", 3, true))
	require.NoError(t, err)

	assert.Equal(t, int64(3), f.currentStock(t, "m1"))
}

func TestRecord_StockInsuficienteNoDejaEfectos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("m1", "Lija")
	_, err := f.record.Record(ctx, entryInput("m1", 3, "1.20"))
	require.NoError(t, err)

	_, err = f.record.Record(ctx, exitInput("m1", 5, false))

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "m1", insufficient.MaterialID)
	assert.Equal(t, int64(5), insufficient.Requested)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(3), f.currentStock(t, "m1"))

	history, err := f.stock.ListMovements(ctx, owner, "m1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecord_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.addMaterial("m1", "Broca")

	noPrice := entryInput("m1", 1, "1")
	noPrice.UnitPrice = nil
	negativePrice := entryInput("m1", 1, "-1")
	noSupplier := entryInput("m1", 1, "1")
	noSupplier.SupplierID = ""
	noCounterpart := exitInput("m1", 1, false)
	noCounterpart.EmployeeID = ""
	unknownType := exitInput("m1", 1, false)
	unknownType.Type = "TRANSFER"
	returnedEntry := entryInput("m1", 1, "1")
	returnedEntry.IsReturn = true

	cases := []struct {
		name  string
		input inventory.RecordMovementInput
		field string
	}{
		{"entrada sin precio", noPrice, "unit_price"},
		{"precio negativo", negativePrice, "unit_price"},
		{"entrada sin proveedor", noSupplier, "supplier_id"},
		{"salida sin destino", noCounterpart, "employee_id"},
		{"tipo desconocido", unknownType, "type"},
		{"entrada marcada como devolución", returnedEntry, "is_return"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.record.Record(context.Background(), tc.input)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	history, err := f.stock.ListMovements(context.Background(), owner, "m1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecord_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	f.addMaterial("m1", "Broca")

	for _, q := range []int64{0, -4} {
		_, err := f.record.Record(context.Background(), entryInput("m1", q, "1"))

		var qerr *domain.InvalidQuantityError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, q, qerr.Quantity)
	}
	assert.Equal(t, int64(0), f.currentStock(t, "m1"))
}

func TestRecord_EntradaQueDesbordaElStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("m1", "Tornillo")
	f.store.ForceStock("m1", math.MaxInt64)

	for _, in := range []inventory.RecordMovementInput{entryInput("m1", 1, "1"), exitInput("m1", 1, true)} {
		_, err := f.record.Record(ctx, in)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "quantity", verr.Field)
		assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	}

	assert.Equal(t, int64(math.MaxInt64), f.currentStock(t, "m1"))
	history, err := f.stock.ListMovements(ctx, owner, "m1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecord_MaterialDeOtroPropietarioNoExiste(t *testing.T) {
	f := newFixture(t)
	f.store.AddMaterial(entity.Material{ID: "ajeno", OwnerID: "owner-2", Name: "Ajeno"})

	_, err := f.record.Record(context.Background(), entryInput("ajeno", 1, "1"))

	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
	assert.Equal(t, 0, f.cache.count(owner))
}

func TestRecord_TipoEnMinusculasYFechaPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.addMaterial("m1", "Cinta")
	in := entryInput("m1", 2, "5")
	in.Type = "entry"
	in.EffectiveDate = time.Time{}

	mov, err := f.record.Record(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeENTRY, mov.Type)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), mov.EffectiveDate)
}

func TestRecord_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("m1", "Electrodo")
	_, err := f.record.Record(ctx, entryInput("m1", 15, "4"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.record.Record(ctx, exitInput("m1", 10, false))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		var ierr *domain.InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &ierr):
			insufficient++
			assert.Equal(t, int64(5), ierr.Available)
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(5), f.currentStock(t, "m1"))
}
