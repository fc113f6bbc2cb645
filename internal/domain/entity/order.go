package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de un pedido (conjunto cerrado).
type OrderStatus string

const (
	OrderPendiente  OrderStatus = "PENDIENTE"
	OrderProcesando OrderStatus = "PROCESANDO"
	OrderEnviado    OrderStatus = "ENVIADO"
	OrderEntregado  OrderStatus = "ENTREGADO"
	OrderCancelado  OrderStatus = "CANCELADO"
)

// OrderStatuses lista los estados en orden de ciclo de vida.
var OrderStatuses = []OrderStatus{OrderPendiente, OrderProcesando, OrderEnviado, OrderEntregado, OrderCancelado}

// Valid indica si el estado pertenece al conjunto cerrado.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus normaliza (mayúsculas, sin espacios) y valida un estado.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Order cabecera de pedido. Se crea una sola vez por checkout exitoso;
// después solo cambian Status y los campos editables por un administrador.
type Order struct {
	ID              string
	UserID          string
	Username        string
	CreatedAt       time.Time
	Total           decimal.Decimal
	Status          OrderStatus
	DeliveryAddress string
	Notes           string
	Lines           []*OrderLine
}

// Clone devuelve una copia profunda (incluye líneas).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = make([]*OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		c.Lines[i] = l.Clone()
	}
	return &c
}
