package repository

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// Delete deja en NULL la categoría de los productos que la referencian.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}
