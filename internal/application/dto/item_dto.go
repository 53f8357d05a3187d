package dto

import "time"

// CreateItemRequest entrada para crear un ítem con saldo inicial 0.
type CreateItemRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=200"`
	Code         string `json:"code"`
	Tag          string `json:"tag"`
	CategoryID   string `json:"category_id" validate:"required"`
	Description  string `json:"description"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	StockMinimum int64  `json:"stock_minimum"`
	Active       *bool  `json:"active"`
}

// UpdateItemRequest cambios administrativos; los campos ausentes no cambian.
// El stock sólo cambia con movimientos.
type UpdateItemRequest struct {
	Name         *string `json:"name"`
	Code         *string `json:"code"`
	CategoryID   *string `json:"category_id"`
	Description  *string `json:"description"`
	Size         *string `json:"size"`
	Color        *string `json:"color"`
	Active       *bool   `json:"active"`
	StockMinimum *int64  `json:"stock_minimum"`
}

// ItemResponse salida de un ítem con su saldo.
type ItemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code,omitempty"`
	Tag          string    `json:"tag,omitempty"`
	CategoryID   string    `json:"category_id"`
	Description  string    `json:"description,omitempty"`
	Size         string    `json:"size,omitempty"`
	Color        string    `json:"color,omitempty"`
	Active       bool      `json:"active"`
	Stock        int64     `json:"stock"`
	StockMinimum int64     `json:"stock_minimum"`
	BelowMinimum bool      `json:"below_minimum"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ItemListRequest query de GET /api/items.
type ItemListRequest struct {
	Search     string `query:"search"`
	CategoryID string `query:"category_id"`
	Active     string `query:"active"` // "true" | "false" | vacío
	PageRequest
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

// UpdateCategoryRequest cambios de una categoría.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
