package repository

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier.
// Delete deja en NULL el proveedor de los productos que lo referencian.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context) ([]*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id string) error
}
