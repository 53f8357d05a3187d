package entity

import "time"

// Balance saldo actual de un ítem (exactamente una fila por ítem).
type Balance struct {
	ItemID    string
	Stock     int64 // nunca negativo
	Minimum   int64 // stock mínimo para alertas de reposición
	UpdatedAt time.Time
}

// BelowMinimum indica si el saldo está por debajo del mínimo configurado.
func (b Balance) BelowMinimum() bool {
	return b.Stock < b.Minimum
}

// ItemWithBalance vista de lectura para listados de inventario.
type ItemWithBalance struct {
	Item    Item
	Balance Balance
}
