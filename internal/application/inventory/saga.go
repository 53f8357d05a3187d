package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Saga acumula acciones compensatorias y las deshace en orden inverso (LIFO)
// cuando un paso posterior falla. Reemplaza la transacción que la capa de
// persistencia no ofrece entre varias escrituras.
type Saga struct {
	log   zerolog.Logger
	steps []sagaStep
}

type sagaStep struct {
	name string
	undo func(ctx context.Context) error
}

// NewSaga construye una saga vacía.
func NewSaga(log zerolog.Logger) *Saga {
	return &Saga{log: log}
}

// Add apila la compensación de un paso que ya se ejecutó con éxito.
func (s *Saga) Add(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

// Len cantidad de compensaciones pendientes.
func (s *Saga) Len() int { return len(s.steps) }

// Unwind ejecuta todas las compensaciones, de la última a la primera. Un fallo no
// detiene las siguientes; los errores se devuelven unidos. No reintenta.
// Se ejecuta sin la cancelación del llamador.
func (s *Saga) Unwind(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			s.log.Error().Err(err).Str("step", step.name).Msg("compensación fallida")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		s.log.Warn().Str("step", step.name).Msg("compensación aplicada")
	}
	s.steps = nil
	return errors.Join(errs...)
}
