package entity

import "github.com/shopspring/decimal"

// OrderLine detalle de un pedido. UnitPrice es el precio capturado al agregar al carrito,
// independiente de cambios posteriores en el catálogo. Nunca se modifica después de creada.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   *string // SET NULL al eliminar el producto
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Clone devuelve una copia independiente.
func (l *OrderLine) Clone() *OrderLine {
	if l == nil {
		return nil
	}
	c := *l
	c.ProductID = cloneStr(l.ProductID)
	return &c
}
