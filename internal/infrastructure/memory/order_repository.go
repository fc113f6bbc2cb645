package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository pedidos y líneas en memoria.
type OrderRepository struct {
	s  *Store
	tx *tx
}

// NewOrderRepository repositorio sin transacción.
func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{s: s}
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if o == nil || o.ID == "" {
		return domain.ErrInvalidInput
	}
	if !o.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	c := o.Clone()
	c.Lines = nil
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.orderLocked(r.tx, o.ID) != nil {
		return domain.ErrDuplicate
	}
	if r.tx != nil {
		r.tx.newOrders[o.ID] = c
		return nil
	}
	r.s.orders[o.ID] = c
	return nil
}

// CreateLine agrega una línea a un pedido creado en la misma transacción.
func (r *OrderRepository) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	if l == nil || l.ID == "" {
		return domain.ErrInvalidInput
	}
	if l.Quantity <= 0 {
		return domain.Storage("create order line", domain.ErrInvalidQuantity)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var o *entity.Order
	if r.tx != nil {
		o = r.tx.newOrders[l.OrderID]
	}
	if o == nil {
		o = r.s.orders[l.OrderID]
	}
	if o == nil {
		return domain.ErrNotFound
	}
	o.Lines = append(o.Lines, l.Clone())
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.orderLocked(r.tx, id), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	return r.filter(func(o *entity.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	return r.filter(func(*entity.Order) bool { return true }), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	if r.tx != nil {
		r.s.mu.RLock()
		exists := r.s.orderLocked(r.tx, id) != nil
		r.s.mu.RUnlock()
		if !exists {
			return domain.ErrNotFound
		}
		r.tx.statuses[id] = status
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, userID string) (map[entity.OrderStatus]int, error) {
	counts := make(map[entity.OrderStatus]int, len(entity.OrderStatuses))
	for _, o := range r.filter(func(o *entity.Order) bool { return userID == "" || o.UserID == userID }) {
		counts[o.Status]++
	}
	return counts, nil
}

// filter pedidos más recientes primero.
func (r *OrderRepository) filter(keep func(*entity.Order) bool) []*entity.Order {
	r.s.mu.RLock()
	all := r.s.ordersLocked(r.tx)
	r.s.mu.RUnlock()
	out := all[:0]
	for _, o := range all {
		if keep(o) {
			out = append(out, o)
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
