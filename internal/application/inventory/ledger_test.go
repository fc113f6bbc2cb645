package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
)

func TestStockLedger_Adjust(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, memory.NewProductRepository(s).Create(ctx, &entity.Product{ID: "P", Stock: 3}))
	ledger := inventory.NewStockLedger()
	runner := memory.NewTxRunner(s)

	err := runner.Run(ctx, func(_ repository.InventoryMovementRepository, products repository.ProductRepository) error {
		stock, err := ledger.Adjust(ctx, products, "P", 2, entity.ReasonManual)
		require.NoError(t, err)
		assert.Equal(t, 5, stock)

		stock, err = ledger.Adjust(ctx, products, "P", -5, entity.ReasonSale)
		require.NoError(t, err)
		assert.Equal(t, 0, stock)

		_, err = ledger.Adjust(ctx, products, "P", -1, entity.ReasonSale)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)

		_, err = ledger.Adjust(ctx, products, "P", 0, entity.ReasonManual)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

		_, err = ledger.Adjust(ctx, products, "X", 1, entity.ReasonManual)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	p, err := memory.NewProductRepository(s).GetByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestMovementRecorder_RecordThenReverseIsIdentity(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, memory.NewProductRepository(s).Create(ctx, &entity.Product{ID: "P", Stock: 8}))
	ledger := inventory.NewStockLedger()
	recorder := inventory.NewMovementRecorder(ledger)
	runner := memory.NewTxRunner(s)

	var movID string
	require.NoError(t, runner.Run(ctx, func(movs repository.InventoryMovementRepository, products repository.ProductRepository) error {
		if _, err := ledger.Adjust(ctx, products, "P", -3, entity.ReasonSale); err != nil {
			return err
		}
		m, err := recorder.Record(ctx, movs, inventory.RecordInput{ProductID: "P", Type: entity.MovementSalida, Quantity: 3})
		if err != nil {
			return err
		}
		movID = m.ID
		return nil
	}))

	require.NoError(t, runner.Run(ctx, func(movs repository.InventoryMovementRepository, products repository.ProductRepository) error {
		m, stock, err := recorder.Reverse(ctx, movs, products, movID)
		require.NoError(t, err)
		assert.Equal(t, 8, stock)
		assert.Equal(t, entity.MovementSalida, m.Type)
		return nil
	}))

	p, err := memory.NewProductRepository(s).GetByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
	m, err := memory.NewInventoryMovementRepository(s).GetByID(ctx, movID)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestMovementRecorder_RejectsNonPositiveQuantity(t *testing.T) {
	s := memory.NewStore()
	recorder := inventory.NewMovementRecorder(inventory.NewStockLedger())
	_, err := recorder.Record(context.Background(), memory.NewInventoryMovementRepository(s), inventory.RecordInput{ProductID: "P", Type: entity.MovementEntrada})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
