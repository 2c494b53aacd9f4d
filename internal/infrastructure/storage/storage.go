// Package storage selecciona el backend de persistencia según STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/memstore"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-ledger/pkg/config"
	"github.com/jhoicas/almacen-ledger/pkg/metrics"
)

// Backend repositorios y transacciones de un driver.
type Backend struct {
	Driver    string
	Tx        inventory.TxRunner
	Materials repository.MaterialRepository
	Movements repository.MovementRepository
	Dashboard repository.DashboardRepository

	close func()
}

// Close libera el pool de conexiones (no-op en memoria).
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open abre el backend configurado.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Ledger, log zerolog.Logger) (*Backend, error) {
	switch cfg.App.StorageDriver {
	case "memory":
		store := memstore.New()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		if cfg.App.SeedFile != "" {
			n, err := LoadSeed(cfg.App.SeedFile, store)
			if err != nil {
				return nil, err
			}
			log.Info().Str("file", cfg.App.SeedFile).Int("materials", n).Msg("materiales iniciales cargados")
		} else {
			log.Warn().Msg("sin STORAGE_SEED_FILE: el store arranca sin materiales")
		}
		return &Backend{
			Driver:    "memory",
			Tx:        store,
			Materials: store.Materials(),
			Movements: store.Movements(),
			Dashboard: store.Dashboard(),
		}, nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &Backend{
			Driver:    "postgres",
			Tx:        postgres.NewTxRunner(pool, cfg.Ledger.MaxRetries, m),
			Materials: postgres.NewMaterialRepository(pool),
			Movements: postgres.NewMovementRepository(pool),
			Dashboard: postgres.NewDashboardRepository(pool),
			close:     pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.App.StorageDriver)
}
