package order

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// TxRunner transacción con repos de inventario y pedidos (checkout y cambios de estado).
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// Carts lo que el checkout necesita del carrito: leerlo y, tras el commit, descontar
// solo las líneas pedidas.
type Carts interface {
	Get(ctx context.Context, ownerID string) (*entity.Cart, error)
	Consume(ctx context.Context, ownerID string, ordered entity.CartSnapshot) error
}
