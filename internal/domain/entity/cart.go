package entity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CartItem línea del carrito: nombre y precio se capturan en la primera inserción.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal precio unitario por cantidad.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart carrito de una identidad autenticada. Vive fuera del almacén transaccional.
type Cart struct {
	Items map[string]CartItem `json:"items"`
}

// NewCart devuelve un carrito vacío.
func NewCart() *Cart {
	return &Cart{Items: make(map[string]CartItem)}
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool { return c == nil || len(c.Items) == 0 }

// Total suma precio × cantidad de todas las líneas.
func (c *Cart) Total() decimal.Decimal {
	return c.Snapshot().Total()
}

// ItemCount suma las cantidades.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Snapshot copia las líneas ordenadas por ProductID ascendente.
func (c *Cart) Snapshot() CartSnapshot {
	if c == nil {
		return nil
	}
	out := make(CartSnapshot, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Clone copia profunda del carrito.
func (c *Cart) Clone() *Cart {
	out := NewCart()
	if c == nil {
		return out
	}
	for k, v := range c.Items {
		out.Items[k] = v
	}
	return out
}

// Subtract descuenta las cantidades de un snapshot ya pedido. Las líneas que llegan a cero
// se eliminan; las que no estaban en el snapshot quedan intactas.
func (c *Cart) Subtract(ordered CartSnapshot) {
	if c == nil {
		return
	}
	for _, it := range ordered {
		cur, ok := c.Items[it.ProductID]
		if !ok {
			continue
		}
		cur.Quantity -= it.Quantity
		if cur.Quantity <= 0 {
			delete(c.Items, it.ProductID)
			continue
		}
		c.Items[it.ProductID] = cur
	}
}

// CartSnapshot estado del carrito (precio y cantidad) al momento del checkout, pasado por valor.
type CartSnapshot []CartItem

// Total suma los subtotales del snapshot.
func (s CartSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Sorted devuelve una copia ordenada por ProductID (orden de adquisición de bloqueos).
func (s CartSnapshot) Sorted() CartSnapshot {
	out := make(CartSnapshot, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
