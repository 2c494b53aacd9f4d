package memstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-ledger/internal/domain"
	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

type materialRepo struct {
	s  *Store
	tx *txState
}

func (r *materialRepo) load(id string) (entity.Material, bool) {
	if r.tx != nil {
		if m, ok := r.tx.materials[id]; ok {
			return m, true
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.materials[id]
	return m, ok
}

func (r *materialRepo) save(m entity.Material) {
	m.UpdatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.materials[m.ID] = m
		return
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.materials[m.ID] = m
}

func (r *materialRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Material, error) {
	m, ok := r.load(id)
	if !ok || m.OwnerID != ownerID {
		return nil, nil
	}
	return &m, nil
}

func (r *materialRepo) GetForUpdate(ctx context.Context, ownerID, id string) (*entity.Material, error) {
	r.s.mu.RLock()
	err := r.s.failures[id]
	r.s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *materialRepo) ListByOwner(_ context.Context, ownerID string, filter repository.MaterialFilter) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, m := range r.s.snapshotMaterials(r.tx) {
		if m.OwnerID != ownerID {
			continue
		}
		if filter.CategoryID != "" && m.CategoryID != filter.CategoryID {
			continue
		}
		if filter.OnlyCritical && !m.IsCritical() {
			continue
		}
		m := m
		out = append(out, &m)
	}
	return out, nil
}

func (r *materialRepo) ListOwnerIDs(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, m := range r.s.snapshotMaterials(r.tx) {
		if !seen[m.OwnerID] {
			seen[m.OwnerID] = true
			out = append(out, m.OwnerID)
		}
	}
	return out, nil
}

func (r *materialRepo) ApplyStock(_ context.Context, id string, delta int64) (int64, error) {
	m, ok := r.load(id)
	if !ok {
		return 0, domain.ErrMaterialNotFound
	}
	if m.CurrentStock+delta < 0 {
		return 0, domain.ErrInsufficientStock
	}
	m.CurrentStock += delta
	r.save(m)
	return m.CurrentStock, nil
}

func (r *materialRepo) SetStock(_ context.Context, id string, stock int64) error {
	m, ok := r.load(id)
	if !ok {
		return domain.ErrMaterialNotFound
	}
	if stock < 0 {
		return domain.ErrInsufficientStock
	}
	m.CurrentStock = stock
	r.save(m)
	return nil
}

func (r *materialRepo) UpdateUnitPrice(_ context.Context, id string, price decimal.Decimal) error {
	m, ok := r.load(id)
	if !ok {
		return domain.ErrMaterialNotFound
	}
	m.UnitPrice = price
	r.save(m)
	return nil
}
