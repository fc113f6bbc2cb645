package repository

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	// GetByID devuelve el pedido con sus líneas, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	// CountByStatus cuenta pedidos por estado; userID vacío = todos los usuarios.
	CountByStatus(ctx context.Context, userID string) (map[entity.OrderStatus]int, error)
}
