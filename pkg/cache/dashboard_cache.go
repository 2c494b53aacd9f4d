// Package cache caché en Redis de vistas de solo lectura.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
)

// DefaultDashboardTTL TTL si no se configura otro.
const DefaultDashboardTTL = 30 * time.Second

const dashboardKeyPrefix = "dashboard"

// DashboardCache guarda el resumen del tablero por propietario.
// Formato de clave: "dashboard:{ownerID}"; el prefijo por propietario evita fugas entre tenants.
// "dashboard:{ownerID}:gen" cuenta las invalidaciones: Set solo escribe si no cambió desde Get.
type DashboardCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewDashboardCache crea la caché. ttl <= 0 usa DefaultDashboardTTL.
func NewDashboardCache(client redis.UniversalClient, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	return &DashboardCache{client: client, ttl: ttl}
}

// Get devuelve el resumen y la generación vigente. Sin entrada el resumen es nil;
// la generación se pasa luego a Set.
func (c *DashboardCache) Get(ctx context.Context, ownerID string) (*dto.DashboardSummaryDTO, int64, error) {
	vals, err := c.client.MGet(ctx, c.key(ownerID), c.genKey(ownerID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("cache get: %w", err)
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var summary dto.DashboardSummaryDTO
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, 0, fmt.Errorf("cache decode: %w", err)
	}
	return &summary, gen, nil
}

// Set guarda el resumen con el TTL configurado si la generación sigue siendo gen.
// Si hubo una invalidación desde el Get, no escribe nada y devuelve nil.
func (c *DashboardCache) Set(ctx context.Context, ownerID string, gen int64, summary *dto.DashboardSummaryDTO) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	genKey := c.genKey(ownerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(ownerID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate borra el resumen del propietario y avanza su generación; se llama
// después de cada cambio de stock.
func (c *DashboardCache) Invalidate(ctx context.Context, ownerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(ownerID))
		pipe.Del(ctx, c.key(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *DashboardCache) key(ownerID string) string {
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, ownerID)
}

func (c *DashboardCache) genKey(ownerID string) string {
	return c.key(ownerID) + ":gen"
}

func parseGen(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache gen: %w", err)
	}
	return gen, nil
}
