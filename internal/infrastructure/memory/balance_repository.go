package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepository)(nil)

// BalanceRepository saldos en memoria con compare-and-swap bajo el mutex del Store.
type BalanceRepository struct {
	s *Store
}

// NewBalanceRepository construye el repositorio.
func NewBalanceRepository(s *Store) *BalanceRepository {
	return &BalanceRepository{s: s}
}

func (r *BalanceRepository) Create(_ context.Context, b *entity.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.balances[b.ItemID]; ok {
		return fmt.Errorf("%w: saldo del ítem %s", domain.ErrDuplicate, b.ItemID)
	}
	r.s.balances[b.ItemID] = *b
	return nil
}

func (r *BalanceRepository) Get(_ context.Context, itemID string) (*entity.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[itemID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BalanceRepository) CompareAndSwap(_ context.Context, itemID string, expected, next int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[itemID]
	if !ok {
		return domain.NotFound("saldo del ítem %s", itemID)
	}
	if b.Stock != expected {
		return domain.ErrStaleBalance
	}
	b.Stock = next
	b.UpdatedAt = time.Now()
	r.s.balances[itemID] = b
	return nil
}

func (r *BalanceRepository) SetMinimum(_ context.Context, itemID string, minimum int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[itemID]
	if !ok {
		return domain.NotFound("saldo del ítem %s", itemID)
	}
	b.Minimum = minimum
	b.UpdatedAt = time.Now()
	r.s.balances[itemID] = b
	return nil
}
