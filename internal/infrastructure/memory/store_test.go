package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/domain/repository"
)

func seedProduct(t *testing.T, s *Store, id string, stock int) {
	t.Helper()
	require.NoError(t, NewProductRepository(s).Create(context.Background(), &entity.Product{ID: id, Name: id, Stock: stock}))
}

func TestTx_UncommittedChangesAreInvisible(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "P", 5)
	runner := NewTxRunner(s)
	outside := NewProductRepository(s)

	boom := errors.New("boom")
	err := runner.Run(ctx, func(movs repository.InventoryMovementRepository, products repository.ProductRepository) error {
		p, err := products.GetForUpdate(ctx, "P")
		require.NoError(t, err)
		require.NoError(t, products.UpdateStock(ctx, "P", p.Stock-2))
		require.NoError(t, movs.Create(ctx, &entity.InventoryMovement{ID: "M", ProductID: "P", Type: entity.MovementSalida, Quantity: 2}))

		inside, err := products.GetByID(ctx, "P")
		require.NoError(t, err)
		assert.Equal(t, 3, inside.Stock, "la tx lee sus propias escrituras")

		seen, err := outside.GetByID(ctx, "P")
		require.NoError(t, err)
		assert.Equal(t, 5, seen.Stock, "sin lecturas sucias")
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := outside.GetByID(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	m, err := NewInventoryMovementRepository(s).GetByID(ctx, "M")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRowLock_TimeoutWhileHeld(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithLockTimeout(20 * time.Millisecond))
	seedProduct(t, s, "P", 1)
	runner := NewTxRunner(s)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, func(_ repository.InventoryMovementRepository, products repository.ProductRepository) error {
			if _, err := products.GetForUpdate(ctx, "P"); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := runner.Run(ctx, func(_ repository.InventoryMovementRepository, products repository.ProductRepository) error {
		_, err := products.GetForUpdate(ctx, "P")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrStorage)

	close(release)
	require.NoError(t, <-done)

	err = runner.Run(ctx, func(_ repository.InventoryMovementRepository, products repository.ProductRepository) error {
		_, err := products.GetForUpdate(ctx, "P")
		return err
	})
	assert.NoError(t, err, "el bloqueo se libera al terminar la tx")
}

func TestProductDelete_ReferentialActions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "P", 3)
	runner := NewTxRunner(s)

	pid := "P"
	require.NoError(t, runner.RunOrder(ctx, func(movs repository.InventoryMovementRepository, _ repository.ProductRepository, orders repository.OrderRepository) error {
		require.NoError(t, orders.Create(ctx, &entity.Order{ID: "O", UserID: "u", Status: entity.OrderPendiente, Total: decimal.NewFromInt(1)}))
		require.NoError(t, orders.CreateLine(ctx, &entity.OrderLine{ID: "L", OrderID: "O", ProductID: &pid, ProductName: "P", Quantity: 1}))
		return movs.Create(ctx, &entity.InventoryMovement{ID: "M", ProductID: "P", Type: entity.MovementSalida, Quantity: 1})
	}))

	require.NoError(t, NewProductRepository(s).Delete(ctx, "P"))

	o, err := NewOrderRepository(s).GetByID(ctx, "O")
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Nil(t, o.Lines[0].ProductID)
	assert.Equal(t, "P", o.Lines[0].ProductName)

	m, err := NewInventoryMovementRepository(s).GetByID(ctx, "M")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCommit_CancelledContextRollsBack(t *testing.T) {
	s := NewStore()
	seedProduct(t, s, "P", 3)
	runner := NewTxRunner(s)

	ctx, cancel := context.WithCancel(context.Background())
	err := runner.Run(ctx, func(_ repository.InventoryMovementRepository, products repository.ProductRepository) error {
		if err := products.UpdateStock(ctx, "P", 1); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	p, err := NewProductRepository(s).GetByID(context.Background(), "P")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestCartStore_Expiry(t *testing.T) {
	ctx := context.Background()
	cs := NewCartStore(time.Minute)
	now := time.Now()
	cs.now = func() time.Time { return now }

	c := entity.NewCart()
	c.Items["A"] = entity.CartItem{ProductID: "A", Quantity: 2}
	require.NoError(t, cs.Save(ctx, "u", c))

	c.Items["A"] = entity.CartItem{ProductID: "A", Quantity: 9}
	loaded, err := cs.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Items["A"].Quantity, "Save guarda una copia")

	cs.now = func() time.Time { return now.Add(2 * time.Minute) }
	loaded, err = cs.Load(ctx, "u")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
