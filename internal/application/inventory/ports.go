package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// Resultados registrados por el observador de movimientos.
const (
	OutcomeApplied      = "applied"
	OutcomeRejected     = "rejected"
	OutcomeInconsistent = "inconsistent"
	OutcomeError        = "error"
)

// MovementObserver recibe métricas del motor. La implementación Prometheus vive en infrastructure/metrics.
type MovementObserver interface {
	ObserveMovement(kind entity.MovementKind, outcome string, start time.Time)
	ObserveBalanceRetry()
	ObserveCompensation(step string, ok bool)
	ObserveProvisioned()
}

// MovementPublisher notifica movimientos ya aplicados (por ejemplo a NATS).
// Los fallos se registran y no afectan el resultado del movimiento.
type MovementPublisher interface {
	PublishMovement(ctx context.Context, result *Result) error
}

type nopObserver struct{}

func (nopObserver) ObserveMovement(entity.MovementKind, string, time.Time) {}
func (nopObserver) ObserveBalanceRetry()                                   {}
func (nopObserver) ObserveCompensation(string, bool)                       {}
func (nopObserver) ObserveProvisioned()                                    {}

type nopPublisher struct{}

func (nopPublisher) PublishMovement(context.Context, *Result) error { return nil }
