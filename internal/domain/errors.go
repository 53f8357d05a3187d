package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrAmbiguous             = errors.New("referencia ambigua")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrNegativeResult        = errors.New("el ajuste dejaría stock negativo")
	ErrStaleBalance          = errors.New("el saldo cambió desde la lectura")
	ErrInternalInconsistency = errors.New("inconsistencia interna entre saldo y kardex")
)

// Invalid envuelve ErrInvalidInput con el detalle del campo que falló.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound con una guía para el llamador.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict envuelve ErrConflict con el motivo.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Candidate es una opción devuelta al llamador para desambiguar.
type Candidate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Active bool   `json:"active"`
}

// AmbiguousError indica que una referencia coincide con más de un registro.
type AmbiguousError struct {
	Field      string // tag, code, name, category
	Value      string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("hay %d coincidencias para %s=%q; use el id", len(e.Candidates), e.Field, e.Value)
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// InsufficientStockError salida mayor al saldo disponible.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NegativeResultError ajuste que dejaría el saldo por debajo de cero.
type NegativeResultError struct {
	Available int64
	Delta     int64
}

func (e *NegativeResultError) Error() string {
	return fmt.Sprintf("el ajuste %d dejaría stock negativo: disponible %d", e.Delta, e.Available)
}

func (e *NegativeResultError) Unwrap() error { return ErrNegativeResult }

// InconsistencyError el kardex falló después de escribir el saldo.
// Compensated indica si el saldo pudo restaurarse al valor previo.
type InconsistencyError struct {
	ItemID      string
	Previous    int64
	Attempted   int64
	Compensated bool
	Cause       error
}

func (e *InconsistencyError) Error() string {
	state := "saldo restaurado"
	if !e.Compensated {
		state = "saldo NO restaurado"
	}
	return fmt.Sprintf("registro de movimiento falló para ítem %s (%s): %v", e.ItemID, state, e.Cause)
}

func (e *InconsistencyError) Unwrap() []error { return []error{ErrInternalInconsistency, e.Cause} }
