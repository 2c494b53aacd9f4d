package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/jhoicas/almacen-ledger/internal/application/analytics"
	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	domaininv "github.com/jhoicas/almacen-ledger/internal/domain/inventory"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/almacen-ledger/internal/interfaces/http"
	"github.com/jhoicas/almacen-ledger/pkg/cache"
	"github.com/jhoicas/almacen-ledger/pkg/config"
	"github.com/jhoicas/almacen-ledger/pkg/logger"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.JWT.Validate(); err != nil {
		panic(err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	m := metrics.New(nil)

	backend, err := storage.Open(ctx, cfg, m, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	policy, err := domaininv.PolicyByName(cfg.Ledger.ValuationPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("LEDGER_VALUATION_POLICY")
	}

	// Caché del resumen del dashboard: opcional, solo con REDIS_ADDR.
	var (
		invalidator  inventory.CacheInvalidator
		summaryCache appanalytics.SummaryCache
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, dashboard sin caché")
		} else {
			defer rdb.Close()
			dc := cache.NewDashboardCache(rdb, cfg.Redis.DashboardTTL())
			invalidator = dc
			summaryCache = dc
		}
	}

	recordUC := inventory.NewRecordMovementUseCase(backend.Tx, invalidator, m, zl)
	stockUC := inventory.NewStockUseCase(backend.Materials, backend.Movements)
	reconcileUC := inventory.NewReconcileUseCase(backend.Tx, backend.Materials, invalidator, m, zl)
	valuationUC := inventory.NewValuationUseCase(backend.Materials, backend.Movements, policy)
	dashboardUC := appanalytics.NewDashboardUseCase(backend.Dashboard, backend.Materials, summaryCache, zl)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.AccessLog(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": backend.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordMovement: recordUC,
		Stock:          stockUC,
		Reconcile:      reconcileUC,
		Valuation:      valuationUC,
		DashboardUC:    dashboardUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
