package entity

import "time"

// Category agrupa productos.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
