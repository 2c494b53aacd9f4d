package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/inventory"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

type movementRepo struct {
	s  *Store
	tx *txState
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	for _, existing := range r.s.snapshotMovements(r.tx) {
		if existing.ID == m.ID {
			return fmt.Errorf("movimiento %s duplicado", m.ID)
		}
	}
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, *m)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *movementRepo) ListByMaterial(_ context.Context, ownerID, materialID string) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool {
		return m.OwnerID == ownerID && m.MaterialID == materialID
	}), nil
}

func (r *movementRepo) ListEntriesByOwner(_ context.Context, ownerID string) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool {
		return m.OwnerID == ownerID && m.IsEntry()
	}), nil
}

func (r *movementRepo) list(keep func(*entity.Movement) bool) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range r.s.snapshotMovements(r.tx) {
		m := m
		if keep(&m) {
			out = append(out, &m)
		}
	}
	inventory.SortCanonical(out)
	return out
}

type dashboardRepo struct {
	s *Store
}

var _ repository.DashboardRepository = (*dashboardRepo)(nil)

func (r *dashboardRepo) CountMaterials(_ context.Context, ownerID string) (int64, error) {
	var n int64
	for _, m := range r.s.snapshotMaterials(nil) {
		if m.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *dashboardRepo) CountMovementsOn(_ context.Context, ownerID string, day time.Time) (repository.MovementCounts, error) {
	var c repository.MovementCounts
	y, mo, d := day.Date()
	for _, m := range r.s.snapshotMovements(nil) {
		if m.OwnerID != ownerID {
			continue
		}
		ey, emo, ed := m.EffectiveDate.Date()
		if ey != y || emo != mo || ed != d {
			continue
		}
		if m.IsEntry() {
			c.Entries++
			continue
		}
		c.Exits++
		if m.IsReturn {
			c.Returns++
		}
	}
	return c, nil
}
