package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// DefaultMaxBalanceAttempts intentos de compare-and-swap antes de rendirse ante escrituras concurrentes.
const DefaultMaxBalanceAttempts = 5

// Options cambios de estado del ítem que acompañan al movimiento.
type Options struct {
	// ReactivateIfPositive activa el ítem si el saldo resultante es mayor a cero.
	ReactivateIfPositive bool
	// DeactivateOnZero desactiva el ítem; exige que el saldo resultante sea exactamente cero.
	DeactivateOnZero bool
}

// Command movimiento sobre un ítem ya identificado.
// Quantity es la magnitud (>0) en RECEIPT/ISSUE y el delta firmado (≠0) en ADJUSTMENT.
type Command struct {
	ItemID   string
	ActorID  string
	Kind     entity.MovementKind
	Quantity int64
	Reason   string
	Options  Options
}

// Result saldo previo, saldo nuevo y asiento del kardex.
type Result struct {
	ItemID      string
	Previous    int64
	New         int64
	Movement    *entity.Movement
	ItemCreated bool
	Activated   bool
	Deactivated bool
}

// EngineDeps dependencias del motor. Gate es obligatorio: sin él Apply rechaza todo con ErrForbidden.
// Locker, Observer y Publisher son opcionales.
type EngineDeps struct {
	Items       repository.ItemRepository
	Balances    repository.BalanceRepository
	Ledger      repository.LedgerRepository
	Gate        *Gate
	Locker      ItemLocker
	Observer    MovementObserver
	Publisher   MovementPublisher
	Logger      zerolog.Logger
	MaxAttempts int
	Now         func() time.Time
}

// AppliedError el movimiento quedó en saldo y kardex pero falló el cambio de estado del ítem.
type AppliedError struct {
	MovementID string
	Step       string
	Err        error
}

func (e *AppliedError) Error() string {
	return fmt.Sprintf("movimiento %s aplicado; %s: %v", e.MovementID, e.Step, e.Err)
}

func (e *AppliedError) Unwrap() error { return e.Err }

// Engine aplica movimientos: lee saldo, calcula, valida, escribe saldo, asienta en el
// kardex y compensa el saldo si el asiento falla.
type Engine struct {
	items       repository.ItemRepository
	balances    repository.BalanceRepository
	ledger      repository.LedgerRepository
	gate        *Gate
	locker      ItemLocker
	observer    MovementObserver
	publisher   MovementPublisher
	log         zerolog.Logger
	maxAttempts int
	now         func() time.Time
}

// NewEngine construye el motor de movimientos.
func NewEngine(deps EngineDeps) *Engine {
	e := &Engine{
		items:       deps.Items,
		balances:    deps.Balances,
		ledger:      deps.Ledger,
		gate:        deps.Gate,
		locker:      deps.Locker,
		observer:    deps.Observer,
		publisher:   deps.Publisher,
		log:         deps.Logger.With().Str("component", "movement_engine").Logger(),
		maxAttempts: deps.MaxAttempts,
		now:         deps.Now,
	}
	if e.locker == nil {
		e.locker = NewLocalLocker()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.publisher == nil {
		e.publisher = nopPublisher{}
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = DefaultMaxBalanceAttempts
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Apply autoriza al actor y aplica el movimiento.
func (e *Engine) Apply(ctx context.Context, cmd Command) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if e.gate == nil {
		return nil, fmt.Errorf("%w: motor sin compuerta de autorización", domain.ErrForbidden)
	}
	if _, err := e.gate.AuthorizeMutation(ctx, cmd.ActorID); err != nil {
		return nil, err
	}
	return e.apply(ctx, cmd)
}

func validateCommand(cmd Command) error {
	if strings.TrimSpace(cmd.ItemID) == "" {
		return domain.Invalid("item_id requerido")
	}
	if strings.TrimSpace(cmd.ActorID) == "" {
		return domain.Invalid("actor requerido")
	}
	switch cmd.Kind {
	case entity.MovementReceipt, entity.MovementIssue:
		if cmd.Quantity <= 0 {
			return domain.Invalid("la cantidad debe ser > 0 en %s", cmd.Kind)
		}
	case entity.MovementAdjustment:
		if cmd.Quantity == 0 {
			return domain.Invalid("en un ajuste la cantidad no puede ser 0")
		}
		if strings.TrimSpace(cmd.Reason) == "" {
			return domain.Invalid("motivo obligatorio en ajustes")
		}
	default:
		return domain.Invalid("tipo de movimiento %q no soportado", cmd.Kind)
	}
	return nil
}

// apply asume comando validado y actor autorizado.
func (e *Engine) apply(ctx context.Context, cmd Command) (*Result, error) {
	start := e.now()
	res, err := e.applySerialized(ctx, cmd)
	e.observer.ObserveMovement(cmd.Kind, outcomeOf(err), start)
	if err != nil {
		return nil, err
	}
	if pubErr := e.publisher.PublishMovement(ctx, res); pubErr != nil {
		e.log.Warn().Err(pubErr).Str("movement_id", res.Movement.ID).Msg("no se pudo publicar el movimiento")
	}
	return res, nil
}

func (e *Engine) applySerialized(ctx context.Context, cmd Command) (*Result, error) {
	unlock, err := e.locker.Lock(ctx, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("bloquear ítem %s: %w", cmd.ItemID, err)
	}
	defer unlock()

	previous, next, err := e.writeBalance(ctx, cmd)
	if err != nil {
		return nil, err
	}

	saga := NewSaga(e.log)
	saga.Add("restaurar saldo", func(ctx context.Context) error {
		return e.balances.CompareAndSwap(ctx, cmd.ItemID, next, previous)
	})

	now := e.now()
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		ItemID:      cmd.ItemID,
		ActorID:     cmd.ActorID,
		Kind:        cmd.Kind,
		Quantity:    cmd.Quantity,
		Reason:      strings.TrimSpace(cmd.Reason),
		StockBefore: previous,
		StockAfter:  next,
		CreatedAt:   now,
	}
	if err := e.ledger.Append(ctx, mov); err != nil {
		compErr := saga.Unwind(ctx)
		e.observer.ObserveCompensation("restaurar saldo", compErr == nil)
		incErr := &domain.InconsistencyError{
			ItemID:      cmd.ItemID,
			Previous:    previous,
			Attempted:   next,
			Compensated: compErr == nil,
			Cause:       err,
		}
		ev := e.log.Warn()
		if compErr != nil {
			ev = e.log.Error().AnErr("compensation_err", compErr)
		}
		ev.Err(err).
			Str("item_id", cmd.ItemID).
			Int64("previous", previous).
			Int64("attempted", next).
			Bool("compensated", compErr == nil).
			Msg("InternalInconsistency: el kardex falló después de escribir el saldo")
		return nil, incErr
	}

	res := &Result{ItemID: cmd.ItemID, Previous: previous, New: next, Movement: mov}

	if cmd.Options.ReactivateIfPositive && next > 0 {
		if err := e.items.SetActive(ctx, cmd.ItemID, true); err != nil {
			return nil, &AppliedError{MovementID: mov.ID, Step: "reactivar ítem", Err: err}
		}
		res.Activated = true
	}
	if cmd.Options.DeactivateOnZero {
		if err := e.items.SetActive(ctx, cmd.ItemID, false); err != nil {
			return nil, &AppliedError{MovementID: mov.ID, Step: "desactivar ítem", Err: err}
		}
		res.Deactivated = true
	}
	return res, nil
}

// writeBalance lee, calcula y escribe el saldo con compare-and-swap; ante una escritura
// concurrente vuelve a leer y recalcula, de modo que las validaciones usan el saldo vigente.
func (e *Engine) writeBalance(ctx context.Context, cmd Command) (previous, next int64, err error) {
	for attempt := 1; ; attempt++ {
		bal, err := e.balances.Get(ctx, cmd.ItemID)
		if err != nil {
			return 0, 0, fmt.Errorf("leer saldo: %w", err)
		}
		if bal == nil {
			return 0, 0, domain.NotFound("el ítem %s no tiene saldo registrado", cmd.ItemID)
		}
		previous = bal.Stock
		next, err = NextBalance(cmd.Kind, previous, cmd.Quantity)
		if err != nil {
			return 0, 0, err
		}
		if cmd.Options.DeactivateOnZero && next != 0 {
			return 0, 0, domain.Conflict("para desactivar el ítem el stock debe quedar en 0 (quedaría %d)", next)
		}

		err = e.balances.CompareAndSwap(ctx, cmd.ItemID, previous, next)
		if err == nil {
			return previous, next, nil
		}
		if !errors.Is(err, domain.ErrStaleBalance) {
			return 0, 0, fmt.Errorf("escribir saldo: %w", err)
		}
		if attempt >= e.maxAttempts {
			return 0, 0, fmt.Errorf("%w: saldo modificado concurrentemente tras %d intentos: %w", domain.ErrConflict, attempt, err)
		}
		e.observer.ObserveBalanceRetry()
		e.log.Debug().Str("item_id", cmd.ItemID).Int("attempt", attempt).Msg("saldo desactualizado, reintentando")
	}
}

// NextBalance calcula el saldo resultante según el tipo de movimiento.
func NextBalance(kind entity.MovementKind, previous, quantity int64) (int64, error) {
	switch kind {
	case entity.MovementReceipt:
		if quantity <= 0 {
			return 0, domain.Invalid("la cantidad debe ser > 0")
		}
		return previous + quantity, nil
	case entity.MovementIssue:
		if quantity <= 0 {
			return 0, domain.Invalid("la cantidad debe ser > 0")
		}
		if previous < quantity {
			return 0, &domain.InsufficientStockError{Available: previous, Requested: quantity}
		}
		return previous - quantity, nil
	case entity.MovementAdjustment:
		if quantity == 0 {
			return 0, domain.Invalid("en un ajuste la cantidad no puede ser 0")
		}
		next := previous + quantity
		if next < 0 {
			return 0, &domain.NegativeResultError{Available: previous, Delta: quantity}
		}
		return next, nil
	}
	return 0, domain.Invalid("tipo de movimiento %q no soportado", kind)
}

func outcomeOf(err error) string {
	var inc *domain.InconsistencyError
	var applied *AppliedError
	switch {
	case err == nil, errors.As(err, &applied):
		return OutcomeApplied
	case errors.As(err, &inc):
		return OutcomeInconsistent
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNegativeResult):
		return OutcomeRejected
	}
	return OutcomeError
}
