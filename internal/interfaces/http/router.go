package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/almacen-ledger/internal/application/analytics"
	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
)

// Roles reconocidos por las rutas del ledger.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordMovement *inventory.RecordMovementUseCase
	Stock          *inventory.StockUseCase
	Reconcile      *inventory.ReconcileUseCase
	Valuation      *inventory.ValuationUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	JWTSecret      string
	// Gatherer para /metrics; nil = registro por defecto de Prometheus.
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ledger de movimientos
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RecordMovement, deps.Stock, deps.Reconcile, deps.Valuation, deps.Log)
	invGroup.Post("/movements", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.RegisterMovement)
	invGroup.Get("/materials/:id/stock", inventoryHandler.GetStock)
	invGroup.Get("/materials/:id/movements", inventoryHandler.ListMovements)
	invGroup.Post("/reconcile", RequireRole(RoleAdmin), inventoryHandler.Reconcile)
	invGroup.Get("/valuation", inventoryHandler.GetValuation)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
