package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/storage"
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
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-worker"})
	zl := log.Zerolog()

	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("el worker requiere REDIS_ADDR")
	}
	if cfg.App.StorageDriver == "memory" {
		log.Warn().Msg("worker con almacenamiento en memoria: no comparte datos con la API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	backend, err := storage.Open(ctx, cfg, m, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	var invalidator inventory.CacheInvalidator
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible para la caché del dashboard")
	} else {
		defer rdb.Close()
		invalidator = cache.NewDashboardCache(rdb, cfg.Redis.DashboardTTL())
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	reconcileUC := inventory.NewReconcileUseCase(backend.Tx, backend.Materials, invalidator, m, zl)
	reconcileJob := jobs.NewReconcileJob(reconcileUC, backend.Materials, client, m, zl)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Worker.Concurrency,
		Log:         zl,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReconcileSweep, Handler: reconcileJob.HandleSweep},
			{Type: jobs.TaskReconcileOwner, Handler: reconcileJob.HandleOwner},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Worker.ReconcileCron, Task: jobs.NewReconcileSweepTask()},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("iniciar worker")
	}

	log.Info().Str("cron", cfg.Worker.ReconcileCron).Msg("reconciliación programada")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker")
	}
	log.Info().Msg("worker detenido")
}
