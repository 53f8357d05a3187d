package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldos por ítem sobre PostgreSQL.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Acepta pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Create inserta el saldo inicial del ítem.
func (r *BalanceRepo) Create(ctx context.Context, b *entity.Balance) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO balances (item_id, stock, minimum, updated_at) VALUES ($1, $2, $3, $4)`,
		b.ItemID, b.Stock, b.Minimum, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: saldo del ítem %s", domain.ErrDuplicate, b.ItemID)
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("ítem %s", b.ItemID)
		}
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// Get obtiene el saldo de un ítem.
func (r *BalanceRepo) Get(ctx context.Context, itemID string) (*entity.Balance, error) {
	var b entity.Balance
	err := r.q.QueryRow(ctx,
		`SELECT item_id, stock, minimum, updated_at FROM balances WHERE item_id = $1`, itemID,
	).Scan(&b.ItemID, &b.Stock, &b.Minimum, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// CompareAndSwap escribe next sólo si el stock sigue siendo expected. Un UPDATE condicionado
// es atómico en PostgreSQL; cero filas afectadas distingue saldo movido de fila inexistente.
func (r *BalanceRepo) CompareAndSwap(ctx context.Context, itemID string, expected, next int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE balances SET stock = $3, updated_at = now() WHERE item_id = $1 AND stock = $2`,
		itemID, expected, next,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM balances WHERE item_id = $1)`, itemID).Scan(&exists); err != nil {
		return fmt.Errorf("check balance: %w", err)
	}
	if !exists {
		return domain.NotFound("saldo del ítem %s", itemID)
	}
	return domain.ErrStaleBalance
}

func (r *BalanceRepo) SetMinimum(ctx context.Context, itemID string, minimum int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE balances SET minimum = $2, updated_at = now() WHERE item_id = $1`, itemID, minimum)
	if err != nil {
		return fmt.Errorf("update balance minimum: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("saldo del ítem %s", itemID)
	}
	return nil
}
