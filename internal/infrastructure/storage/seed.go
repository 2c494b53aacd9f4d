package storage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/infrastructure/memstore"
)

// seedMaterial fila del archivo de materiales iniciales. El stock arranca en 0:
// las existencias se cargan registrando entradas.
type seedMaterial struct {
	ID           string `mapstructure:"id"`
	OwnerID      string `mapstructure:"owner_id"`
	Name         string `mapstructure:"name"`
	CategoryID   string `mapstructure:"category_id"`
	CategoryName string `mapstructure:"category_name"`
	Unit         string `mapstructure:"unit"`
	MinimumStock int64  `mapstructure:"minimum_stock"`
	UnitPrice    string `mapstructure:"unit_price"`
}

// LoadSeed lee la lista "materials" de path (YAML, JSON o TOML según extensión) y la
// da de alta en store. Devuelve cuántos materiales cargó.
func LoadSeed(path string, store *memstore.Store) (int, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return 0, fmt.Errorf("seed: leer %s: %w", path, err)
	}
	var rows []seedMaterial
	if err := v.UnmarshalKey("materials", &rows); err != nil {
		return 0, fmt.Errorf("seed: decodificar materiales: %w", err)
	}

	materials := make([]entity.Material, 0, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.OwnerID) == "" || strings.TrimSpace(r.Name) == "" {
			return 0, fmt.Errorf("seed: material %d: id, owner_id y name son obligatorios", i)
		}
		if r.MinimumStock < 0 {
			return 0, fmt.Errorf("seed: material %s: minimum_stock negativo", r.ID)
		}
		price := decimal.Zero
		if r.UnitPrice != "" {
			p, err := decimal.NewFromString(r.UnitPrice)
			if err != nil {
				return 0, fmt.Errorf("seed: material %s: unit_price: %w", r.ID, err)
			}
			price = p
		}
		unit := r.Unit
		if unit == "" {
			unit = "unidad"
		}
		materials = append(materials, entity.Material{
			ID:           r.ID,
			OwnerID:      r.OwnerID,
			Name:         r.Name,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			Unit:         unit,
			MinimumStock: r.MinimumStock,
			UnitPrice:    price,
		})
	}
	for _, m := range materials {
		store.AddMaterial(m)
	}
	return len(materials), nil
}
