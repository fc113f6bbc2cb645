package memory

import (
	"context"

	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	t := r.s.begin()
	defer t.rollback()

	if err := fn(
		&InventoryMovementRepository{s: r.s, tx: t},
		&ProductRepository{s: r.s, tx: t},
	); err != nil {
		return err
	}
	return t.commit(ctx)
}

// RunOrder como Run, agregando el repositorio de pedidos (checkout y cambios de estado).
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	t := r.s.begin()
	defer t.rollback()

	if err := fn(
		&InventoryMovementRepository{s: r.s, tx: t},
		&ProductRepository{s: r.s, tx: t},
		&OrderRepository{s: r.s, tx: t},
	); err != nil {
		return err
	}
	return t.commit(ctx)
}
