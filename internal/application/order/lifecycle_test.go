package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/application/order"
	"github.com/jhoicas/inventario-cacc/internal/application/ports"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

func TestSetStatus_DeliveredHasNoStockEffect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "A", "2.00", 10)
	o, err := f.engine.Confirm(ctx, buyer("u1"), entity.CartSnapshot{item("A", "2.00", 4)}, "", "")
	require.NoError(t, err)

	lc := order.NewLifecycle(f.runner, f.events)
	updated, err := lc.SetStatus(ctx, o.ID, "ENTREGADO")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderEntregado, updated.Status)

	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderEntregado, stored.Status)
	assert.Equal(t, 6, f.stock(t, "A"))

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, ports.EventOrderStatusChanged, last.Type)
	assert.Equal(t, order.StatusChange{OrderID: o.ID, From: entity.OrderPendiente, To: entity.OrderEntregado}, last.Payload)
}

func TestSetStatus_TransitionsAreUnrestricted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "A", "1.00", 1)
	o, err := f.engine.Confirm(ctx, buyer("u1"), entity.CartSnapshot{item("A", "1.00", 1)}, "", "")
	require.NoError(t, err)

	lc := order.NewLifecycle(f.runner, nil)
	for _, st := range []string{"CANCELADO", "pendiente", " ENVIADO ", "ENTREGADO", "PROCESANDO"} {
		_, err := lc.SetStatus(ctx, o.ID, st)
		require.NoError(t, err, st)
	}
	stored, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcesando, stored.Status)
}

func TestSetStatus_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lc := order.NewLifecycle(f.runner, nil)

	_, err := lc.SetStatus(ctx, "no-existe", "ENVIADO")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = lc.SetStatus(ctx, "no-existe", "PERDIDO")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUseCase_CheckoutAndQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "A", "3.00", 10)
	uc := order.NewUseCase(f.engine, order.NewLifecycle(f.runner, nil), f.orders, f.cartSvc)

	_, err := uc.Checkout(ctx, buyer("u1"), dto.CheckoutRequest{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	f.putCart(t, "u1", item("A", "3.00", 2))
	resp, err := uc.Checkout(ctx, buyer("u1"), dto.CheckoutRequest{DeliveryAddress: "Calle 2", Notes: "tarde"})
	require.NoError(t, err)
	assert.Equal(t, "Calle 2", resp.DeliveryAddress)
	assert.Equal(t, "PENDIENTE", resp.Status)
	require.Len(t, resp.Lines, 1)

	f.putCart(t, "u2", item("A", "3.00", 1))
	other, err := uc.Checkout(ctx, buyer("u2"), dto.CheckoutRequest{})
	require.NoError(t, err)
	_, err = uc.SetStatus(ctx, other.ID, dto.UpdateOrderStatusRequest{Status: "ENTREGADO"})
	require.NoError(t, err)

	mine, err := uc.MyOrders(ctx, buyer("u1"))
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, 1, mine.Stats.Total)
	assert.Equal(t, 1, mine.Stats.Counts["PENDIENTE"])
	assert.Equal(t, 0, mine.Stats.Counts["ENTREGADO"])

	all, err := uc.AdminList(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 1, all.Stats.Counts["ENTREGADO"])

	_, err = uc.GetOrder(ctx, buyer("u2"), resp.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := entity.Identity{UserID: "adm", Username: "admin", Role: entity.RoleAdmin}
	got, err := uc.GetOrder(ctx, admin, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	_, err = uc.GetOrder(ctx, admin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
