// Package memstore implementa los puertos de repositorio en memoria.
// Se usa en tests y en modo demo (STORAGE_DRIVER=memory); no persiste nada.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/almacen-ledger/internal/domain/entity"
	"github.com/jhoicas/almacen-ledger/internal/domain/repository"
)

// Store datos en memoria. Las transacciones se serializan con txMu y aplican sus
// cambios al confirmar; si fn falla no queda nada escrito.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	materials map[string]entity.Material
	movements []entity.Movement
	failures  map[string]error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		materials: make(map[string]entity.Material),
		failures:  make(map[string]error),
	}
}

// AddMaterial da de alta o reemplaza un material (datos maestros, fuera del ledger).
func (s *Store) AddMaterial(m entity.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.UpdatedAt = m.CreatedAt
	s.materials[m.ID] = m
}

// AddMovement inserta un hecho sin tocar la proyección (historial heredado, tests de deriva).
func (s *Store) AddMovement(m entity.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, m)
}

// ForceStock sobrescribe current_stock sin pasar por el ledger (simula deriva).
func (s *Store) ForceStock(materialID string, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.materials[materialID]; ok {
		m.CurrentStock = stock
		s.materials[materialID] = m
	}
}

// FailOn hace fallar las lecturas con bloqueo del material indicado (nil lo desactiva).
func (s *Store) FailOn(materialID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, materialID)
		return
	}
	s.failures[materialID] = err
}

// Materials repositorio de materiales fuera de transacción.
func (s *Store) Materials() repository.MaterialRepository { return &materialRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// Dashboard repositorio de consultas del tablero.
func (s *Store) Dashboard() repository.DashboardRepository { return &dashboardRepo{s: s} }

// txState cambios pendientes de una transacción.
type txState struct {
	materials map[string]entity.Material
	movements []entity.Movement
}

// Run ejecuta fn con repositorios atados a una transacción y confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txState{materials: make(map[string]entity.Material)}
	if err := fn(&materialRepo{s: s, tx: tx}, &movementRepo{s: s, tx: tx}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range tx.materials {
		s.materials[id] = m
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

// snapshotMaterials materiales confirmados con los cambios de tx superpuestos.
func (s *Store) snapshotMaterials(tx *txState) []entity.Material {
	s.mu.RLock()
	out := make([]entity.Material, 0, len(s.materials))
	for id, m := range s.materials {
		if tx != nil {
			if staged, ok := tx.materials[id]; ok {
				m = staged
			}
		}
		out = append(out, m)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// snapshotMovements hechos confirmados más los pendientes de tx.
func (s *Store) snapshotMovements(tx *txState) []entity.Movement {
	s.mu.RLock()
	out := make([]entity.Movement, 0, len(s.movements))
	out = append(out, s.movements...)
	s.mu.RUnlock()
	if tx != nil {
		out = append(out, tx.movements...)
	}
	return out
}
