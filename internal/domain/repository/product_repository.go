package repository

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// Orden del listado de productos.
const (
	SortByName      = "name"
	SortByNameDesc  = "-name"
	SortByPrice     = "price"
	SortByPriceDesc = "-price"
)

// ProductFilter filtros del catálogo. Valores cero = sin filtro; Sort vacío = por nombre.
type ProductFilter struct {
	Search     string // nombre, sin distinguir mayúsculas
	CategoryID string
	InStock    bool // solo stock > 0
	Sort       string
}

// ValidSort indica si el orden está entre los admitidos.
func (f ProductFilter) ValidSort() bool {
	switch f.Sort {
	case "", SortByName, SortByNameDesc, SortByPrice, SortByPriceDesc:
		return true
	}
	return false
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Update modifica los datos de catálogo. No toca Stock (se maneja vía movimientos).
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, productID string, stock int) error
	Delete(ctx context.Context, id string) error
}
