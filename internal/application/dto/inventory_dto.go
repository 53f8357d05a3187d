package dto

import "time"

// MovementRequest body para POST /api/movements (y las rutas directas receipt/issue/adjustment).
// Basta uno de item_id, tag, code o name; name + category_id permiten crear el ítem si no existe.
// quantity: entero > 0 en RECEIPT/ISSUE; delta firmado ≠ 0 en ADJUSTMENT.
type MovementRequest struct {
	ItemID         string `json:"item_id,omitempty"`
	Tag            string `json:"tag,omitempty"`
	Code           string `json:"code,omitempty"`
	Name           string `json:"name,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	CategoryName   string `json:"category_name,omitempty"`
	Description    string `json:"description,omitempty"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
	StockMinimum   *int64 `json:"stock_minimum,omitempty"`
	Type           string `json:"type"`
	Quantity       *int64 `json:"quantity"`
	Reason         string `json:"reason,omitempty"`
	DeactivateItem bool   `json:"deactivate_item,omitempty"`
}

// MovementDTO asiento del kardex.
type MovementDTO struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	ActorID     string    `json:"actor_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	StockBefore int64     `json:"stock_before"`
	StockAfter  int64     `json:"stock_after"`
	CreatedAt   time.Time `json:"created_at"`
}

// BalanceChangeDTO saldo antes y después del movimiento.
type BalanceChangeDTO struct {
	ItemID   string `json:"item_id"`
	Previous int64  `json:"previous"`
	New      int64  `json:"new"`
}

// MovementResponse salida de un movimiento aplicado.
type MovementResponse struct {
	Movement    MovementDTO      `json:"movement"`
	Balance     BalanceChangeDTO `json:"balance"`
	ItemCreated bool             `json:"item_created"`
	Activated   bool             `json:"item_activated,omitempty"`
	Deactivated bool             `json:"item_deactivated,omitempty"`
}

// MovementHistoryRequest query de GET /api/movements.
type MovementHistoryRequest struct {
	ItemID string `query:"item_id"`
	Type   string `query:"type"`
	From   string `query:"from"` // RFC3339 o YYYY-MM-DD
	To     string `query:"to"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// MovementHistoryResponse página del historial.
type MovementHistoryResponse struct {
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Count  int           `json:"count"`
	Items  []MovementDTO `json:"items"`
}
