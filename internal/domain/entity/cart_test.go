package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

func TestCart_TotalesYConteo(t *testing.T) {
	c := entity.NewCart()
	c.Items["b"] = entity.CartItem{ProductID: "b", Name: "B", UnitPrice: decimal.RequireFromString("2.50"), Quantity: 2}
	c.Items["a"] = entity.CartItem{ProductID: "a", Name: "A", UnitPrice: decimal.RequireFromString("2.00"), Quantity: 4}

	assert.True(t, decimal.RequireFromString("13.00").Equal(c.Total()))
	assert.Equal(t, 6, c.ItemCount())
	assert.False(t, c.IsEmpty())
}

func TestCart_SnapshotOrdenadoYPorValor(t *testing.T) {
	c := entity.NewCart()
	for _, id := range []string{"c", "a", "b"} {
		c.Items[id] = entity.CartItem{ProductID: id, UnitPrice: decimal.NewFromInt(1), Quantity: 1}
	}

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ProductID, snap[1].ProductID, snap[2].ProductID})

	// modificar el carrito no altera el snapshot
	c.Items["a"] = entity.CartItem{ProductID: "a", UnitPrice: decimal.NewFromInt(1), Quantity: 9}
	assert.Equal(t, 1, snap[0].Quantity)
}

func TestCart_NilEsVacio(t *testing.T) {
	var c *entity.Cart
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
	assert.NotNil(t, c.Clone().Items)
}

func TestCartSnapshot_Sorted(t *testing.T) {
	s := entity.CartSnapshot{{ProductID: "z"}, {ProductID: "m"}, {ProductID: "a"}}
	sorted := s.Sorted()
	assert.Equal(t, "a", sorted[0].ProductID)
	assert.Equal(t, "z", s[0].ProductID, "Sorted no debe mutar el original")
}

func TestCart_SubtractSoloLoPedido(t *testing.T) {
	c := entity.NewCart()
	c.Items["a"] = entity.CartItem{ProductID: "a", Quantity: 5}
	c.Items["b"] = entity.CartItem{ProductID: "b", Quantity: 2}
	c.Items["c"] = entity.CartItem{ProductID: "c", Quantity: 1}

	c.Subtract(entity.CartSnapshot{{ProductID: "a", Quantity: 3}, {ProductID: "b", Quantity: 2}, {ProductID: "x", Quantity: 1}})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items["a"].Quantity)
	assert.Equal(t, 1, c.Items["c"].Quantity)
	_, ok := c.Items["b"]
	assert.False(t, ok)

	var nilCart *entity.Cart
	nilCart.Subtract(entity.CartSnapshot{{ProductID: "a", Quantity: 1}})
}
