package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/almacen-ledger/internal/application/analytics"
	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/memstore"
	apphttp "github.com/jhoicas/almacen-ledger/internal/interfaces/http"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

func newAPI(t *testing.T) (*fiber.App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.AddMaterial(entity.Material{
		ID: "disco", OwnerID: testOwnerID, Name: "Disco de Corte", CategoryID: "abr", CategoryName: "Abrasivos",
		Unit: "unidad", MinimumStock: 5, UnitPrice: decimal.Zero,
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := zerolog.Nop()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RecordMovement: inventory.NewRecordMovementUseCase(store, nil, m, log),
		Stock:          inventory.NewStockUseCase(store.Materials(), store.Movements()),
		Reconcile:      inventory.NewReconcileUseCase(store, store.Materials(), nil, m, log),
		Valuation:      inventory.NewValuationUseCase(store.Materials(), store.Movements(), nil),
		DashboardUC:    appanalytics.NewDashboardUseCase(store.Dashboard(), store.Materials(), nil, log),
		JWTSecret:      testJWTSecret,
		Gatherer:       reg,
		Log:            log,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func entryBody(qty int64, price string) map[string]any {
	return map[string]any{
		"material_id": "disco", "type": "ENTRY", "quantity": qty,
		"unit_price": price, "supplier_id": "prov-1", "effective_date": "2026-10-01",
	}
}

func exitBody(qty int64, isReturn bool) map[string]any {
	return map[string]any{
		"material_id": "disco", "type": "EXIT", "quantity": qty,
		"is_return": isReturn, "employee_id": "emp-1", "effective_date": "2026-10-02",
	}
}

func TestAPI_FlujoCompleto(t *testing.T) {
	app, _ := newAPI(t)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", entryBody(20, "35.50"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.NotEmpty(t, mov.ID)
	assert.Equal(t, "2026-10-01", mov.EffectiveDate)

	resp, _ = call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", exitBody(2, false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", exitBody(1, true))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/materials/disco/stock", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.StockResponse
	require.NoError(t, json.Unmarshal(raw, &stock))
	assert.Equal(t, int64(19), stock.CurrentStock)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/valuation?search=disco", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var valuation dto.FinancialValuationDTO
	require.NoError(t, json.Unmarshal(raw, &valuation))
	require.Len(t, valuation.Rows, 1)
	assert.True(t, decimal.RequireFromString("674.50").Equal(valuation.TotalValue))
	assert.Equal(t, int64(19), valuation.TotalItems)

	resp, raw = call(t, app, http.MethodPost, "/api/inventory/reconcile?material_id=disco", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.ReconciliationReportDTO
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 0, report.Corrected)
	require.Len(t, report.Unchanged, 1)
	assert.Equal(t, int64(19), report.Unchanged[0].Stock)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/materials/disco/movements?limit=2", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	assert.Len(t, history.Items, 2)
	assert.Equal(t, 3, history.Page.Total)
	assert.True(t, history.Page.HasMore)
	assert.Equal(t, "ENTRY", history.Items[0].Type)
}

func TestAPI_StockInsuficiente409(t *testing.T) {
	app, _ := newAPI(t)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", exitBody(3, false))

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.EqualValues(t, 3, body.Details["requested"])
	assert.EqualValues(t, 0, body.Details["available"])
}

func TestAPI_ErroresDeValidacion(t *testing.T) {
	app, _ := newAPI(t)

	noSupplier := entryBody(1, "2")
	delete(noSupplier, "supplier_id")
	badType := entryBody(1, "2")
	badType["type"] = "TRANSFER"
	zero := entryBody(0, "2")

	for name, body := range map[string]map[string]any{
		"sin proveedor": noSupplier,
		"tipo inválido": badType,
		"cantidad cero": zero,
	} {
		t.Run(name, func(t *testing.T) {
			resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
			assert.Contains(t, string(raw), "VALIDATION")
		})
	}
}

func TestAPI_MaterialInexistente404(t *testing.T) {
	app, _ := newAPI(t)

	resp, raw := call(t, app, http.MethodGet, "/api/inventory/materials/otro/stock", "bodeguero", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestAPI_ReconciliarRequiereAdmin(t *testing.T) {
	app, _ := newAPI(t)

	resp, _ := call(t, app, http.MethodPost, "/api/inventory/reconcile", "bodeguero", nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ReconciliarCorrigeDeriva(t *testing.T) {
	app, store := newAPI(t)
	resp, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "admin", entryBody(4, "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	store.ForceStock("disco", 9)

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/reconcile", "admin", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.ReconciliationReportDTO
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Len(t, report.Corrections, 1)
	assert.Equal(t, int64(9), report.Corrections[0].PreviousStock)
	assert.Equal(t, int64(4), report.Corrections[0].CorrectedStock)
}

func TestAPI_Dashboard(t *testing.T) {
	app, _ := newAPI(t)

	resp, raw := call(t, app, http.MethodGet, "/api/dashboard/summary", "bodeguero", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary dto.DashboardSummaryDTO
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, int64(1), summary.TotalMaterials)
	assert.Equal(t, int64(1), summary.CriticalItems)
}

func TestAPI_SinTokenYMetricas(t *testing.T) {
	app, _ := newAPI(t)

	resp, _ := call(t, app, http.MethodGet, "/api/dashboard/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _ = call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero", entryBody(1, "1"))
	resp, raw := call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `almacen_movements_recorded_total{kind="entry"} 1`)
}
