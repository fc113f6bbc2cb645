package entity

import "time"

// Customer representa un cliente al que se puede asociar un movimiento de inventario.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
}
