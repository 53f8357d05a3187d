package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository kardex en memoria, sólo inserción.
type LedgerRepository struct {
	s *Store
}

// NewLedgerRepository construye el repositorio.
func NewLedgerRepository(s *Store) *LedgerRepository {
	return &LedgerRepository{s: s}
}

func (r *LedgerRepository) Append(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.movements {
		if existing.ID == m.ID {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
		}
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *LedgerRepository) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

// List filtra y ordena por fecha descendente; a igual fecha, el último insertado primero.
func (r *LedgerRepository) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if f.ItemID != "" && m.ItemID != f.ItemID {
			continue
		}
		if f.ActorID != "" && m.ActorID != f.ActorID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	start := min(max(f.Offset, 0), len(out))
	out = out[start:]
	return out[:capLimit(len(out), f.Limit)], nil
}
