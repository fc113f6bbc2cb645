package dto

import "time"

// CategoryRequest entrada para crear o editar una categoría.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactRequest entrada para crear o editar un proveedor o cliente.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=150"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Email   string `json:"email" validate:"omitempty,email,max=150"`
	Address string `json:"address" validate:"omitempty,max=200"`
}

// ContactResponse salida de un proveedor o cliente.
type ContactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
