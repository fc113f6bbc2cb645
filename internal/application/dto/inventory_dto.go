package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required"` // ENTRADA | SALIDA, sin distinguir mayúsculas
	Quantity    int    `json:"quantity"`
	CustomerID  string `json:"customer_id" validate:"omitempty,uuid"`
	Description string `json:"description" validate:"max=500"`
}

// RegisterMovementResponse resultado de un movimiento manual.
type RegisterMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	NewStock int              `json:"new_stock"`
}

// MovementResponse salida de un movimiento de inventario.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"type"`
	Reason      string    `json:"reason"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      *string   `json:"user_id"`
	CustomerID  *string   `json:"customer_id"`
	OrderID     *string   `json:"order_id"`
	Description string    `json:"description"`
}

// ReversedMovementResponse resultado de eliminar (revertir) un movimiento.
type ReversedMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	NewStock int              `json:"new_stock"`
}

// MovementStatsResponse conteos del panel de movimientos.
type MovementStatsResponse struct {
	TotalEntradas  int `json:"total_entradas"`
	TotalSalidas   int `json:"total_salidas"`
	MovementsToday int `json:"movements_today"`
}

// LedgerReport compara el stock del producto con el neto de su historial de movimientos.
type LedgerReport struct {
	ProductID  string `json:"product_id"`
	Stock      int    `json:"stock"`
	Entradas   int    `json:"entradas"`
	Salidas    int    `json:"salidas"`
	Net        int    `json:"net"`
	Consistent bool   `json:"consistent"`
}
