package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación en memoria. Con tx nil cada operación se aplica directamente.
type ProductRepository struct {
	s  *Store
	tx *tx
}

// NewProductRepository repositorio sin transacción.
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{s: s}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidInput
	}
	if p.Stock < 0 {
		return domain.ErrInvalidQuantity
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.tx != nil {
		if _, ok := r.tx.newProducts[p.ID]; ok {
			return domain.ErrDuplicate
		}
		r.tx.newProducts[p.ID] = p.Clone()
		return nil
	}
	r.s.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.productLocked(r.tx, id), nil
}

// GetForUpdate toma el bloqueo de fila antes de leer. Sin tx equivale a GetByID.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	if r.tx != nil {
		for id := range r.tx.newProducts {
			ids = append(ids, id)
		}
	}
	search := strings.ToLower(f.Search)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		p := r.s.productLocked(r.tx, id)
		if f.InStock && p.Stock <= 0 {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return productLess(f.Sort, out[i], out[j]) })
	return out, nil
}

func productLess(order string, a, b *entity.Product) bool {
	switch order {
	case repository.SortByNameDesc:
		if a.Name != b.Name {
			return a.Name > b.Name
		}
	case repository.SortByPrice, repository.SortByPriceDesc:
		if c := a.Price.Cmp(b.Price); c != 0 {
			return (c < 0) == (order == repository.SortByPrice)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	default:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.ID < b.ID
}

// Update modifica los datos de catálogo; ignora Stock.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.CategoryID = cloneStr(p.CategoryID)
	cur.SupplierID = cloneStr(p.SupplierID)
	cur.Price = p.Price
	cur.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return domain.Storage("update stock", domain.ErrInvalidQuantity)
	}
	if r.tx != nil {
		if err := r.tx.lock(ctx, productID); err != nil {
			return err
		}
		r.s.mu.RLock()
		exists := r.s.productLocked(r.tx, productID) != nil
		r.s.mu.RUnlock()
		if !exists {
			return domain.ErrNotFound
		}
		r.tx.stock[productID] = stock
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// Delete elimina el producto: sus movimientos se eliminan y las líneas de pedido quedan sin producto.
// Espera el bloqueo de fila para no interferir con un checkout en curso.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ch, err := r.s.locks.acquire(ctx, id, r.s.lockTimeout)
	if err != nil {
		return domain.Storage("lock product "+id, err)
	}
	defer func() { <-ch }()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	for mid, m := range r.s.movements {
		if m.ProductID == id {
			delete(r.s.movements, mid)
		}
	}
	for _, o := range r.s.orders {
		for _, l := range o.Lines {
			if l.ProductID != nil && *l.ProductID == id {
				l.ProductID = nil
			}
		}
	}
	return nil
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
