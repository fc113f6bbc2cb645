package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock se registra como ENTRADA.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=150"`
	Description  string          `json:"description"`
	CategoryID   *string         `json:"category_id" validate:"omitempty,uuid"`
	SupplierID   *string         `json:"supplier_id" validate:"omitempty,uuid"`
	Price        decimal.Decimal `json:"price"`
	InitialStock int             `json:"initial_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID  *string          `json:"supplier_id" validate:"omitempty,uuid"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id"`
	SupplierID  *string         `json:"supplier_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductQuery filtros del catálogo (vitrina): búsqueda por nombre, categoría, solo con stock y orden.
type ProductQuery struct {
	Search     string `query:"q"`
	CategoryID string `query:"category_id"`
	InStock    bool   `query:"in_stock"`
	Sort       string `query:"sort"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
	Page  PageResponse      `json:"page"`
}
