package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	Delete(ctx context.Context, id string) error
	// List devuelve todos los movimientos, más recientes primero.
	List(ctx context.Context) ([]*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryMovement, error)
	// Totals devuelve Σ cantidades ENTRADA y Σ cantidades SALIDA de un producto.
	Totals(ctx context.Context, productID string) (entradas, salidas int, err error)
	// Stats cuenta entradas, salidas y movimientos desde dayStart.
	Stats(ctx context.Context, dayStart time.Time) (entity.MovementStats, error)
}
