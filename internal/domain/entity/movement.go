package entity

import "time"

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento.
const (
	MovementReceipt    MovementKind = "RECEIPT"    // entrada
	MovementIssue      MovementKind = "ISSUE"      // salida
	MovementAdjustment MovementKind = "ADJUSTMENT" // ajuste con delta firmado
)

// Valid indica si el tipo es uno de los soportados.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementReceipt, MovementIssue, MovementAdjustment:
		return true
	}
	return false
}

// Movement registro inmutable del kardex. Se crea una vez por movimiento aplicado
// y nunca se actualiza ni se borra.
type Movement struct {
	ID          string
	ItemID      string
	ActorID     string
	Kind        MovementKind
	Quantity    int64 // magnitud; en ajustes es el delta firmado
	Reason      string
	StockBefore int64
	StockAfter  int64
	CreatedAt   time.Time
}

// Delta devuelve el cambio neto que produjo el movimiento en el saldo.
func (m Movement) Delta() int64 {
	return m.StockAfter - m.StockBefore
}

// MovementFilter filtros para el historial de movimientos.
type MovementFilter struct {
	ItemID  string
	ActorID string // vacío = todos los usuarios
	Kind    MovementKind
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}
