package entity

import "time"

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementEntrada MovementType = "ENTRADA" // entrada (reposición)
	MovementSalida  MovementType = "SALIDA"  // salida (consumo o venta)
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	return t == MovementEntrada || t == MovementSalida
}

// Delta convierte una cantidad positiva en el delta de stock con el signo del tipo.
func (t MovementType) Delta(qty int) int {
	if t == MovementSalida {
		return -qty
	}
	return qty
}

// MovementReason causa del cambio de stock.
type MovementReason string

const (
	ReasonManual   MovementReason = "AJUSTE_MANUAL"
	ReasonSale     MovementReason = "VENTA"
	ReasonReversal MovementReason = "REVERSION"
)

// InventoryMovement entrada inmutable del libro de movimientos de un producto.
// Invariante: product.stock == Σ ENTRADA.quantity - Σ SALIDA.quantity.
type InventoryMovement struct {
	ID          string
	ProductID   string
	Type        MovementType
	Reason      MovementReason
	Quantity    int // siempre > 0; el signo lo da Type
	CreatedAt   time.Time
	UserID      *string // SET NULL al eliminar el usuario
	CustomerID  *string // SET NULL al eliminar el cliente
	OrderID     *string // CASCADE con el pedido
	Description string
}

// Delta devuelve el efecto de este movimiento sobre el stock.
func (m *InventoryMovement) Delta() int {
	return m.Type.Delta(m.Quantity)
}

// Clone devuelve una copia independiente.
func (m *InventoryMovement) Clone() *InventoryMovement {
	if m == nil {
		return nil
	}
	c := *m
	c.UserID = cloneStr(m.UserID)
	c.CustomerID = cloneStr(m.CustomerID)
	c.OrderID = cloneStr(m.OrderID)
	return &c
}

// MovementStats conteos agregados para el panel de movimientos.
type MovementStats struct {
	Entradas int
	Salidas  int
	Today    int
}
