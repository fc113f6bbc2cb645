package cart

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// Store persistencia del carrito por identidad (sesión). Load de un carrito inexistente
// devuelve un carrito vacío, no un error.
type Store interface {
	Load(ctx context.Context, ownerID string) (*entity.Cart, error)
	Save(ctx context.Context, ownerID string, cart *entity.Cart) error
	Clear(ctx context.Context, ownerID string) error
}

// CatalogReader lectura de productos (precio, nombre y stock actual).
type CatalogReader interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// Service operaciones del carrito. Solo lee el stock; nunca lo descuenta.
// La verificación de stock aquí es orientativa: la autoritativa ocurre en el checkout.
type Service struct {
	store   Store
	catalog CatalogReader
	owners  sync.Map // ownerID -> *sync.Mutex
}

// NewService construye el servicio.
func NewService(store Store, catalog CatalogReader) *Service {
	return &Service{store: store, catalog: catalog}
}

// lockOwner serializa load-modify-save del carrito de una identidad en este proceso.
func (s *Service) lockOwner(ownerID string) func() {
	v, _ := s.owners.LoadOrStore(ownerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Add agrega qty unidades del producto. En la primera inserción captura nombre y precio.
// Devuelve la cantidad total de unidades en el carrito.
func (s *Service) Add(ctx context.Context, ownerID, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return 0, err
	}
	defer s.lockOwner(ownerID)()

	c, err := s.load(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	item, ok := c.Items[productID]
	if !ok {
		item = entity.CartItem{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price}
	}
	if item.Quantity+qty > p.Stock {
		return 0, domain.NewInsufficientStock(productID, p.Stock, item.Quantity+qty)
	}
	item.Quantity += qty
	c.Items[productID] = item
	if err := s.save(ctx, ownerID, c); err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

// SetQuantity reemplaza la cantidad de una línea existente.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return err
	}
	defer s.lockOwner(ownerID)()

	c, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	item, ok := c.Items[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if qty > p.Stock {
		return domain.NewInsufficientStock(productID, p.Stock, qty)
	}
	item.Quantity = qty
	c.Items[productID] = item
	return s.save(ctx, ownerID, c)
}

// Remove quita la línea; no hace nada si no existe.
func (s *Service) Remove(ctx context.Context, ownerID, productID string) error {
	defer s.lockOwner(ownerID)()

	c, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, ok := c.Items[productID]; !ok {
		return nil
	}
	delete(c.Items, productID)
	return s.save(ctx, ownerID, c)
}

// Clear vacía el carrito.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	defer s.lockOwner(ownerID)()
	if err := s.store.Clear(ctx, ownerID); err != nil {
		return domain.Storage("clear cart", err)
	}
	return nil
}

// Consume quita del carrito lo que ya se convirtió en pedido. Lo agregado después
// de tomar el snapshot se conserva.
func (s *Service) Consume(ctx context.Context, ownerID string, ordered entity.CartSnapshot) error {
	defer s.lockOwner(ownerID)()

	c, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	c.Subtract(ordered)
	if c.IsEmpty() {
		if err := s.store.Clear(ctx, ownerID); err != nil {
			return domain.Storage("clear cart", err)
		}
		return nil
	}
	return s.save(ctx, ownerID, c)
}

// Get devuelve el carrito actual.
func (s *Service) Get(ctx context.Context, ownerID string) (*entity.Cart, error) {
	return s.load(ctx, ownerID)
}

// View devuelve líneas, total y cantidad de unidades.
func (s *Service) View(ctx context.Context, ownerID string) (*dto.CartResponse, error) {
	c, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap := c.Snapshot()
	resp := &dto.CartResponse{
		Items:     make([]dto.CartItemResponse, 0, len(snap)),
		Total:     snap.Total(),
		ItemCount: c.ItemCount(),
	}
	for _, it := range snap {
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return resp, nil
}

func (s *Service) product(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, ownerID string) (*entity.Cart, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, domain.Storage("load cart", err)
	}
	if c == nil || c.Items == nil {
		c = entity.NewCart()
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, ownerID string, c *entity.Cart) error {
	if err := s.store.Save(ctx, ownerID, c); err != nil {
		return domain.Storage("save cart", err)
	}
	return nil
}
