// reconcile recalcula current_stock desde el historial de movimientos e imprime el reporte en JSON.
//
// Uso:
//
//	go run ./cmd/reconcile --owner <id> [--material <id>]
//	go run ./cmd/reconcile --all-owners
//	go run ./cmd/reconcile --all-owners --enqueue   # delega en el worker (requiere REDIS_ADDR)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/almacen-ledger/pkg/config"
	"github.com/jhoicas/almacen-ledger/pkg/logger"
)

func main() {
	ownerID := flag.String("owner", "", "propietario a reconciliar")
	materialID := flag.String("material", "", "reconciliar solo este material (requiere --owner)")
	allOwners := flag.Bool("all-owners", false, "reconciliar todos los propietarios")
	enqueue := flag.Bool("enqueue", false, "encolar en el worker en vez de ejecutar aquí")
	flag.Parse()

	if (*ownerID == "") == !*allOwners || (*materialID != "" && *ownerID == "") {
		fmt.Fprintln(os.Stderr, "indique --owner <id> [--material <id>] o --all-owners")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	// El reporte va a stdout; los logs a stderr.
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-reconcile", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *enqueue {
		if err := enqueueTasks(ctx, cfg, *ownerID, *materialID); err != nil {
			log.Fatal().Err(err).Msg("encolar reconciliación")
		}
		log.Info().Msg("reconciliación encolada")
		return
	}

	backend, err := storage.Open(ctx, cfg, nil, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	uc := inventory.NewReconcileUseCase(backend.Tx, backend.Materials, nil, nil, log.Zerolog())

	owners := []string{*ownerID}
	if *allOwners {
		if owners, err = backend.Materials.ListOwnerIDs(ctx); err != nil {
			log.Fatal().Err(err).Msg("listar propietarios")
		}
	}
	var material *string
	if *materialID != "" {
		material = materialID
	}

	reports := make([]dto.ReconciliationReportDTO, 0, len(owners))
	failed := false
	for _, owner := range owners {
		report, err := uc.Reconcile(ctx, owner, material)
		if err != nil {
			log.Error().Err(err).Str("owner_id", owner).Msg("reconciliación")
			failed = true
			continue
		}
		failed = failed || report.Failed > 0
		reports = append(reports, report.ToReportDTO())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
	if failed {
		os.Exit(1)
	}
}

func enqueueTasks(ctx context.Context, cfg *config.Config, ownerID, materialID string) error {
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("--enqueue requiere REDIS_ADDR")
	}
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()

	task := jobs.NewReconcileSweepTask()
	if ownerID != "" {
		var err error
		task, err = jobs.NewReconcileOwnerTask(jobs.ReconcileOwnerPayload{OwnerID: ownerID, MaterialID: materialID})
		if err != nil {
			return err
		}
	}
	_, err := client.EnqueueContext(ctx, task)
	return err
}
