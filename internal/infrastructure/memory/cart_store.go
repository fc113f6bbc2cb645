package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// CartStore carritos por identidad en memoria del proceso, con expiración.
type CartStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[string]cartEntry
}

type cartEntry struct {
	cart    *entity.Cart
	expires time.Time
}

// NewCartStore ttl <= 0 = sin expiración.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{ttl: ttl, now: time.Now, carts: make(map[string]cartEntry)}
}

// Load devuelve una copia del carrito; vacío si no existe o expiró.
func (s *CartStore) Load(ctx context.Context, ownerID string) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.carts[ownerID]
	if !ok {
		return entity.NewCart(), nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.carts, ownerID)
		return entity.NewCart(), nil
	}
	return e.cart.Clone(), nil
}

func (s *CartStore) Save(ctx context.Context, ownerID string, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := cartEntry{cart: cart.Clone()}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.carts[ownerID] = e
	return nil
}

func (s *CartStore) Clear(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerID)
	return nil
}
