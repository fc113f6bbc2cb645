package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su precio y stock.
// Stock solo cambia vía movimientos de inventario (entradas/salidas) o pedidos confirmados.
type Product struct {
	ID          string
	Name        string
	Description string
	CategoryID  *string // referencia débil: NULL al eliminar la categoría
	SupplierID  *string // referencia débil: NULL al eliminar el proveedor
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone devuelve una copia independiente (punteros incluidos).
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.CategoryID = cloneStr(p.CategoryID)
	c.SupplierID = cloneStr(p.SupplierID)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
