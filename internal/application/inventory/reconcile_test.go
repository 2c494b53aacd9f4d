package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-ledger/internal/domain/inventory"
)

func newReconciler(f *fixture) *inventory.ReconcileUseCase {
	return inventory.NewReconcileUseCase(f.store, f.store.Materials(), f.cache, nil, zerolog.Nop())
}

func TestReconcile_SinDerivaEsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("disco", "Disco de Corte")
	for _, in := range []inventory.RecordMovementInput{
		entryInput("disco", 20, "35.50"),
		exitInput("disco", 2, false),
		exitInput("disco", 1, true),
	} {
		_, err := f.record.Record(ctx, in)
		require.NoError(t, err)
	}
	id := "disco"

	report, err := newReconciler(f).Reconcile(ctx, owner, &id)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, report.Corrected)
	assert.Empty(t, report.Corrections)
	require.Len(t, report.Unchanged, 1)
	assert.Equal(t, inventory.StockCheck{MaterialID: "disco", Name: "Disco de Corte", Stock: 19}, report.Unchanged[0])
}

func TestReconcile_CorrigeDerivaYEsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("a", "Alambre")
	f.addMaterial("b", "Brocha")
	_, err := f.record.Record(ctx, entryInput("a", 10, "1"))
	require.NoError(t, err)
	_, err = f.record.Record(ctx, entryInput("b", 4, "2"))
	require.NoError(t, err)
	f.store.ForceStock("a", 50)

	rec := newReconciler(f)
	first, err := rec.Reconcile(ctx, owner, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Checked)
	assert.Equal(t, 1, first.Corrected)
	require.Len(t, first.Corrections, 1)
	assert.Equal(t, inventory.StockCorrection{MaterialID: "a", Name: "Alambre", PreviousStock: 50, CorrectedStock: 10}, first.Corrections[0])
	assert.Equal(t, int64(10), f.currentStock(t, "a"))

	second, err := rec.Reconcile(ctx, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Corrected)
	assert.Len(t, second.Unchanged, 2)
}

func TestReconcile_HistorialCorruptoSeRecortaEnCero(t *testing.T) {
	f := newFixture(t)
	f.addMaterial("m1", "Tornillo")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.AddMovement(entity.Movement{ID: "x1", OwnerID: owner, MaterialID: "m1", Type: entity.MovementTypeEXIT,
		Quantity: 5, EmployeeID: "emp", EffectiveDate: base, CreatedAt: base})
	f.store.AddMovement(entity.Movement{ID: "e1", OwnerID: owner, MaterialID: "m1", Type: entity.MovementTypeENTRY,
		Quantity: 3, UnitPrice: price("1"), SupplierID: "prov", EffectiveDate: base.AddDate(0, 0, 1), CreatedAt: base})
	id := "m1"

	report, err := newReconciler(f).Reconcile(context.Background(), owner, &id)

	require.NoError(t, err)
	require.Len(t, report.Corrections, 1)
	assert.Equal(t, int64(3), report.Corrections[0].CorrectedStock)
	assert.True(t, report.Corrections[0].Clamped)
	assert.Equal(t, int64(3), f.currentStock(t, "m1"))
}

func TestReconcile_UnFalloNoDetieneALosDemas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("a", "Alambre")
	f.addMaterial("b", "Brocha")
	_, err := f.record.Record(ctx, entryInput("b", 4, "2"))
	require.NoError(t, err)
	f.store.ForceStock("b", 1)
	boom := errors.New("conexión perdida")
	f.store.FailOn("a", boom)

	report, err := newReconciler(f).Reconcile(ctx, owner, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "a", report.Failures[0].MaterialID)
	assert.ErrorIs(t, report.Failures[0].Err, boom)
	assert.Equal(t, 1, report.Corrected)
	assert.Equal(t, int64(4), f.currentStock(t, "b"))
}

func TestReconcile_MaterialInexistente(t *testing.T) {
	f := newFixture(t)
	id := "no-existe"

	_, err := newReconciler(f).Reconcile(context.Background(), owner, &id)

	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

// Tras cualquier secuencia de operaciones válidas el stock nunca es negativo y
// coincide con la reproducción del historial.
func TestReconcile_HistorialAleatorioCoincideConLaProyeccion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMaterial("m1", "Pintura")
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		qty := int64(rnd.Intn(9) + 1)
		var in inventory.RecordMovementInput
		switch rnd.Intn(3) {
		case 0:
			in = entryInput("m1", qty, "3.25")
		case 1:
			in = exitInput("m1", qty, false)
		default:
			in = exitInput("m1", qty, true)
		}
		in.EffectiveDate = time.Date(2026, 2, 1+rnd.Intn(27), 0, 0, 0, 0, time.UTC)
		_, err := f.record.Record(ctx, in)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
		require.GreaterOrEqual(t, f.currentStock(t, "m1"), int64(0))
	}

	history, err := f.stock.ListMovements(ctx, owner, "m1")
	require.NoError(t, err)
	replayed := domaininv.Replay(history)

	report, err := newReconciler(f).Reconcile(ctx, owner, nil)
	require.NoError(t, err)
	for _, c := range report.Corrections {
		assert.Equal(t, replayed.Stock, c.CorrectedStock)
	}
	assert.Equal(t, replayed.Stock, f.currentStock(t, "m1"))
}
