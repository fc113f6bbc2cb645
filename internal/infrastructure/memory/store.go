package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

var errLockTimeout = errors.New("tiempo de espera agotado al bloquear la fila")

// Store almacén transaccional en memoria. Mismas garantías que el backend PostgreSQL:
// bloqueo exclusivo por producto hasta el fin de la transacción y commit todo o nada.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	customers  map[string]*entity.Customer
	users      map[string]*entity.User
	orders     map[string]*entity.Order
	movements  map[string]*entity.InventoryMovement

	locks       *rowLocks
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout limita la espera por el bloqueo de fila de un producto. 0 = sin límite.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		suppliers:  make(map[string]*entity.Supplier),
		customers:  make(map[string]*entity.Customer),
		users:      make(map[string]*entity.User),
		orders:     make(map[string]*entity.Order),
		movements:  make(map[string]*entity.InventoryMovement),
		locks:      &rowLocks{m: make(map[string]chan struct{})},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// rowLocks un semáforo de capacidad 1 por producto.
type rowLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func (l *rowLocks) get(id string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.m[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.m[id] = ch
	}
	return ch
}

func (l *rowLocks) acquire(ctx context.Context, id string, timeout time.Duration) (chan struct{}, error) {
	ch := l.get(id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var timeoutC <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timeoutC = t.C
	}
	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeoutC:
		return nil, errLockTimeout
	}
}

// tx cambios pendientes de una transacción. Nada es visible para otros hasta commit.
type tx struct {
	s    *Store
	held map[string]chan struct{}
	done bool

	stock            map[string]int
	newProducts      map[string]*entity.Product
	newMovements     map[string]*entity.InventoryMovement
	deletedMovements map[string]bool
	newOrders        map[string]*entity.Order
	statuses         map[string]entity.OrderStatus
}

func (s *Store) begin() *tx {
	return &tx{
		s:                s,
		held:             make(map[string]chan struct{}),
		stock:            make(map[string]int),
		newProducts:      make(map[string]*entity.Product),
		newMovements:     make(map[string]*entity.InventoryMovement),
		deletedMovements: make(map[string]bool),
		newOrders:        make(map[string]*entity.Order),
		statuses:         make(map[string]entity.OrderStatus),
	}
}

// lock toma el bloqueo de fila del producto. Reentrante dentro de la misma tx.
func (t *tx) lock(ctx context.Context, productID string) error {
	if _, ok := t.held[productID]; ok {
		return nil
	}
	ch, err := t.s.locks.acquire(ctx, productID, t.s.lockTimeout)
	if err != nil {
		return domain.Storage("lock product "+productID, err)
	}
	t.held[productID] = ch
	return nil
}

func (t *tx) release() {
	for id, ch := range t.held {
		<-ch
		delete(t.held, id)
	}
}

func (t *tx) rollback() {
	if t.done {
		return
	}
	t.done = true
	t.release()
}

// commit aplica todos los cambios de forma atómica. Un ctx cancelado revierte.
func (t *tx) commit(ctx context.Context) error {
	if t.done {
		return domain.Storage("commit", errors.New("transacción finalizada"))
	}
	if err := ctx.Err(); err != nil {
		t.rollback()
		return domain.Storage("commit", err)
	}
	s := t.s
	s.mu.Lock()
	for id, p := range t.newProducts {
		s.products[id] = p
	}
	for id, stock := range t.stock {
		if p, ok := s.products[id]; ok {
			p.Stock = stock
			p.UpdatedAt = time.Now()
		}
	}
	for id, o := range t.newOrders {
		s.orders[id] = o
	}
	for id, st := range t.statuses {
		if o, ok := s.orders[id]; ok {
			o.Status = st
		}
	}
	for id, m := range t.newMovements {
		s.movements[id] = m
	}
	for id := range t.deletedMovements {
		delete(s.movements, id)
	}
	s.mu.Unlock()
	t.done = true
	t.release()
	return nil
}

// product devuelve el producto visible para la tx (o committed si t es nil). Llamar con s.mu tomado.
func (s *Store) productLocked(t *tx, id string) *entity.Product {
	var p *entity.Product
	if t != nil {
		p = t.newProducts[id]
	}
	if p == nil {
		p = s.products[id]
	}
	if p == nil {
		return nil
	}
	c := p.Clone()
	if t != nil {
		if st, ok := t.stock[id]; ok {
			c.Stock = st
		}
	}
	return c
}

func (s *Store) movementLocked(t *tx, id string) *entity.InventoryMovement {
	if t != nil {
		if t.deletedMovements[id] {
			return nil
		}
		if m, ok := t.newMovements[id]; ok {
			return m.Clone()
		}
	}
	return s.movements[id].Clone()
}

// movementsLocked vista combinada de movimientos committed y pendientes de la tx.
func (s *Store) movementsLocked(t *tx) []*entity.InventoryMovement {
	out := make([]*entity.InventoryMovement, 0, len(s.movements))
	for id, m := range s.movements {
		if t != nil && t.deletedMovements[id] {
			continue
		}
		out = append(out, m.Clone())
	}
	if t != nil {
		for _, m := range t.newMovements {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (s *Store) orderLocked(t *tx, id string) *entity.Order {
	var o *entity.Order
	if t != nil {
		o = t.newOrders[id]
	}
	if o == nil {
		o = s.orders[id]
	}
	if o == nil {
		return nil
	}
	c := o.Clone()
	if t != nil {
		if st, ok := t.statuses[id]; ok {
			c.Status = st
		}
	}
	return c
}

func (s *Store) ordersLocked(t *tx) []*entity.Order {
	out := make([]*entity.Order, 0, len(s.orders))
	for id := range s.orders {
		out = append(out, s.orderLocked(t, id))
	}
	if t != nil {
		for id := range t.newOrders {
			out = append(out, s.orderLocked(t, id))
		}
	}
	return out
}
