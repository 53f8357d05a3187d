package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Request movimiento con referencia laxa al ítem (id, tag, código o nombre).
// Quantity es puntero para distinguir "no enviada" de cero.
type Request struct {
	ActorID        string
	Ref            ItemRef
	Kind           entity.MovementKind
	Quantity       *int64
	Reason         string
	DeactivateItem bool
}

// Dispatcher combina Resolver y Engine para entradas capturadas por personas.
type Dispatcher struct {
	gate     *Gate
	resolver *Resolver
	engine   *Engine
}

// NewDispatcher construye el despachador.
func NewDispatcher(gate *Gate, resolver *Resolver, engine *Engine) *Dispatcher {
	return &Dispatcher{gate: gate, resolver: resolver, engine: engine}
}

// Dispatch valida la forma, autoriza, resuelve el ítem y aplica el movimiento.
// Si el ítem resuelto estaba inactivo se pide reactivarlo cuando el saldo quede positivo.
// Si el movimiento no se registra, se deshace lo que hizo la resolución (ítem creado, tag vinculado).
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	actor, err := d.gate.AuthorizeMutation(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	resolution, err := d.resolver.Resolve(ctx, req.Ref, actor.ID)
	if err != nil {
		return nil, err
	}
	saga := NewSaga(d.resolver.log)
	resolution.Compensate(saga)

	res, err := d.engine.apply(ctx, Command{
		ItemID:   resolution.ItemID,
		ActorID:  actor.ID,
		Kind:     req.Kind,
		Quantity: *req.Quantity,
		Reason:   req.Reason,
		Options: Options{
			ReactivateIfPositive: resolution.WasInactive,
			DeactivateOnZero:     req.DeactivateItem,
		},
	})
	if err != nil {
		if movementRecorded(err) || saga.Len() == 0 {
			return nil, err
		}
		if compErr := saga.Unwind(ctx); compErr != nil {
			return nil, fmt.Errorf("%w (deshacer resolución: %w)", err, compErr)
		}
		return nil, err
	}
	res.ItemCreated = resolution.Created
	return res, nil
}

// movementRecorded indica si el error llegó después de tocar el saldo o el kardex;
// en ese caso el ítem resuelto debe conservarse.
func movementRecorded(err error) bool {
	var inc *domain.InconsistencyError
	var applied *AppliedError
	return errors.As(err, &inc) || errors.As(err, &applied)
}

// Receipt entrada directa.
func (d *Dispatcher) Receipt(ctx context.Context, req Request) (*Result, error) {
	req.Kind = entity.MovementReceipt
	return d.Dispatch(ctx, req)
}

// Issue salida directa.
func (d *Dispatcher) Issue(ctx context.Context, req Request) (*Result, error) {
	req.Kind = entity.MovementIssue
	return d.Dispatch(ctx, req)
}

// Adjust ajuste directo; Quantity es el delta firmado.
func (d *Dispatcher) Adjust(ctx context.Context, req Request) (*Result, error) {
	req.Kind = entity.MovementAdjustment
	return d.Dispatch(ctx, req)
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.ActorID) == "" {
		return domain.ErrUnauthorized
	}
	if req.Kind == "" {
		return domain.Invalid("falta type (RECEIPT | ISSUE | ADJUSTMENT)")
	}
	if !req.Kind.Valid() {
		return domain.Invalid("type %q no soportado", req.Kind)
	}
	if req.Quantity == nil {
		return domain.Invalid("falta quantity")
	}
	if req.Ref.Empty() {
		return domain.Invalid("envíe item_id, tag, code o name")
	}
	q := *req.Quantity
	switch req.Kind {
	case entity.MovementReceipt, entity.MovementIssue:
		if q <= 0 {
			return domain.Invalid("quantity debe ser un entero > 0 en %s", req.Kind)
		}
	case entity.MovementAdjustment:
		if q == 0 {
			return domain.Invalid("quantity no puede ser 0 en un ajuste")
		}
		if strings.TrimSpace(req.Reason) == "" {
			return domain.Invalid("reason es obligatorio en un ajuste")
		}
	}
	if req.Ref.Creation.Minimum < 0 {
		return domain.Invalid("stock_minimum no puede ser negativo")
	}
	return nil
}
