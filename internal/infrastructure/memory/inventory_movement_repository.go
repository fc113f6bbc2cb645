package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepository)(nil)

// InventoryMovementRepository libro de movimientos en memoria.
type InventoryMovementRepository struct {
	s  *Store
	tx *tx
}

// NewInventoryMovementRepository repositorio sin transacción.
func NewInventoryMovementRepository(s *Store) *InventoryMovementRepository {
	return &InventoryMovementRepository{s: s}
}

func (r *InventoryMovementRepository) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m == nil || m.ID == "" {
		return domain.ErrInvalidInput
	}
	if m.Quantity <= 0 {
		return domain.Storage("create movement", domain.ErrInvalidQuantity)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.productLocked(r.tx, m.ProductID) == nil {
		return domain.ErrNotFound
	}
	if r.tx != nil {
		r.tx.newMovements[m.ID] = m.Clone()
		return nil
	}
	r.s.movements[m.ID] = m.Clone()
	return nil
}

func (r *InventoryMovementRepository) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.movementLocked(r.tx, id), nil
}

func (r *InventoryMovementRepository) Delete(ctx context.Context, id string) error {
	if r.tx != nil {
		r.s.mu.RLock()
		m := r.s.movementLocked(r.tx, id)
		r.s.mu.RUnlock()
		if m == nil {
			return domain.ErrNotFound
		}
		if _, ok := r.tx.newMovements[id]; ok {
			delete(r.tx.newMovements, id)
			return nil
		}
		r.tx.deletedMovements[id] = true
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.movements, id)
	return nil
}

func (r *InventoryMovementRepository) List(ctx context.Context) ([]*entity.InventoryMovement, error) {
	return r.filter(func(*entity.InventoryMovement) bool { return true }), nil
}

func (r *InventoryMovementRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryMovement, error) {
	return r.filter(func(m *entity.InventoryMovement) bool { return m.ProductID == productID }), nil
}

func (r *InventoryMovementRepository) ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryMovement, error) {
	return r.filter(func(m *entity.InventoryMovement) bool { return m.OrderID != nil && *m.OrderID == orderID }), nil
}

func (r *InventoryMovementRepository) Totals(ctx context.Context, productID string) (entradas, salidas int, err error) {
	for _, m := range r.filter(func(m *entity.InventoryMovement) bool { return m.ProductID == productID }) {
		switch m.Type {
		case entity.MovementEntrada:
			entradas += m.Quantity
		case entity.MovementSalida:
			salidas += m.Quantity
		}
	}
	return entradas, salidas, nil
}

func (r *InventoryMovementRepository) Stats(ctx context.Context, dayStart time.Time) (entity.MovementStats, error) {
	var st entity.MovementStats
	for _, m := range r.filter(func(*entity.InventoryMovement) bool { return true }) {
		switch m.Type {
		case entity.MovementEntrada:
			st.Entradas++
		case entity.MovementSalida:
			st.Salidas++
		}
		if !m.CreatedAt.Before(dayStart) {
			st.Today++
		}
	}
	return st, nil
}

// filter devuelve los movimientos que cumplen keep, más recientes primero.
func (r *InventoryMovementRepository) filter(keep func(*entity.InventoryMovement) bool) []*entity.InventoryMovement {
	r.s.mu.RLock()
	all := r.s.movementsLocked(r.tx)
	r.s.mu.RUnlock()
	out := all[:0]
	for _, m := range all {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
