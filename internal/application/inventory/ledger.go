package inventory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// StockLedger es el único punto que modifica Product.Stock.
// Siempre opera con repositorios atados a una transacción abierta.
type StockLedger struct{}

// NewStockLedger construye el ledger.
func NewStockLedger() *StockLedger { return &StockLedger{} }

// Lock bloquea la fila del producto (SELECT ... FOR UPDATE) y la devuelve.
// El bloqueo dura hasta el fin de la transacción.
func (l *StockLedger) Lock(ctx context.Context, productRepo repository.ProductRepository, productID string) (*entity.Product, error) {
	p, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Adjust aplica delta al stock del producto y devuelve el stock resultante.
// Falla con InsufficientStockError si el resultado sería negativo; en ese caso no escribe nada.
func (l *StockLedger) Adjust(
	ctx context.Context,
	productRepo repository.ProductRepository,
	productID string,
	delta int,
	reason entity.MovementReason,
) (int, error) {
	if delta == 0 {
		return 0, domain.ErrInvalidQuantity
	}
	p, err := l.Lock(ctx, productRepo, productID)
	if err != nil {
		return 0, err
	}
	next := p.Stock + delta
	if next < 0 {
		return p.Stock, domain.NewInsufficientStock(productID, p.Stock, -delta)
	}
	if err := productRepo.UpdateStock(ctx, productID, next); err != nil {
		return p.Stock, err
	}
	log.Debug().
		Str("product_id", productID).
		Int("before", p.Stock).
		Int("after", next).
		Str("reason", string(reason)).
		Msg("stock ajustado")
	return next, nil
}
