package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// Límites de paginación del historial.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// HistoryQuery filtros del historial de movimientos.
type HistoryQuery struct {
	ActorID string
	ItemID  string
	Kind    entity.MovementKind
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// HistoryPage página del historial.
type HistoryPage struct {
	Limit  int
	Offset int
	Count  int
	Items  []*entity.Movement
}

// HistoryService consulta el kardex. Los roles no privilegiados sólo ven sus propios movimientos.
type HistoryService struct {
	ledger       repository.LedgerRepository
	gate         *Gate
	defaultLimit int
	maxLimit     int
}

// NewHistoryService construye el servicio; límites <= 0 usan los valores por defecto.
func NewHistoryService(ledger repository.LedgerRepository, gate *Gate, defaultLimit, maxLimit int) *HistoryService {
	if maxLimit <= 0 {
		maxLimit = MaxHistoryLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultHistoryLimit, maxLimit)
	}
	return &HistoryService{ledger: ledger, gate: gate, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// List devuelve una página del historial ordenada por fecha descendente.
func (s *HistoryService) List(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	actor, err := s.gate.AuthorizeRead(ctx, q.ActorID)
	if err != nil {
		return nil, err
	}
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, domain.Invalid("type %q no soportado", q.Kind)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, domain.Invalid("from debe ser anterior a to")
	}
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = s.defaultLimit
	case limit > s.maxLimit:
		limit = s.maxLimit
	}
	offset := max(q.Offset, 0)

	filter := entity.MovementFilter{
		ItemID: q.ItemID,
		Kind:   q.Kind,
		From:   q.From,
		To:     q.To,
		Limit:  limit,
		Offset: offset,
	}
	if !s.gate.IsPrivileged(actor) {
		filter.ActorID = actor.ID
	}
	items, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	return &HistoryPage{Limit: limit, Offset: offset, Count: len(items), Items: items}, nil
}
