package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.SupplierRepository = (*SupplierRepository)(nil)
	_ repository.CustomerRepository = (*CustomerRepository)(nil)
)

// CategoryRepository categorías en memoria.
type CategoryRepository struct{ s *Store }

// NewCategoryRepository construye el repositorio.
func NewCategoryRepository(s *Store) *CategoryRepository { return &CategoryRepository{s: s} }

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	v := *c
	r.s.categories[c.ID] = &v
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	v := *c
	return &v, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		v := *c
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.categories {
		if id != c.ID && other.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	v := *c
	r.s.categories[c.ID] = &v
	return nil
}

// Delete elimina la categoría y deja en NULL la referencia de sus productos.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.categories, id)
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

// SupplierRepository proveedores en memoria.
type SupplierRepository struct{ s *Store }

// NewSupplierRepository construye el repositorio.
func NewSupplierRepository(s *Store) *SupplierRepository { return &SupplierRepository{s: s} }

func (r *SupplierRepository) Create(ctx context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sp.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *sp
	r.s.suppliers[sp.ID] = &v
	return nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	v := *sp
	return &v, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for _, sp := range r.s.suppliers {
		v := *sp
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *SupplierRepository) Update(ctx context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sp.ID]; !ok {
		return domain.ErrNotFound
	}
	v := *sp
	r.s.suppliers[sp.ID] = &v
	return nil
}

// Delete elimina el proveedor y deja en NULL la referencia de sus productos.
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.suppliers, id)
	for _, p := range r.s.products {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
		}
	}
	return nil
}

// CustomerRepository clientes en memoria.
type CustomerRepository struct{ s *Store }

// NewCustomerRepository construye el repositorio.
func NewCustomerRepository(s *Store) *CustomerRepository { return &CustomerRepository{s: s} }

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	v := *c
	r.s.customers[c.ID] = &v
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	v := *c
	return &v, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		v := *c
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	v := *c
	r.s.customers[c.ID] = &v
	return nil
}

// Delete elimina el cliente y deja en NULL la referencia en los movimientos.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.customers, id)
	for _, m := range r.s.movements {
		if m.CustomerID != nil && *m.CustomerID == id {
			m.CustomerID = nil
		}
	}
	return nil
}
