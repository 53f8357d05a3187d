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

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const movementColumns = `id, item_id, actor_id, kind, quantity, reason, stock_before, stock_after, created_at`

// LedgerRepo kardex sobre PostgreSQL. Sólo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

func scanMovement(row pgx.Row, m *entity.Movement) error {
	return row.Scan(&m.ID, &m.ItemID, &m.ActorID, &m.Kind, &m.Quantity, &m.Reason,
		&m.StockBefore, &m.StockAfter, &m.CreatedAt)
}

// Append registra un movimiento.
func (r *LedgerRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `INSERT INTO movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, m.ActorID, string(m.Kind), m.Quantity, m.Reason, m.StockBefore, m.StockAfter, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var m entity.Movement
	err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// List filtra por ítem, usuario, tipo y rango de fechas; más reciente primero.
func (r *LedgerRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE TRUE`
	var args []any
	pos := 1
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.ActorID != "" {
		query += fmt.Sprintf(" AND actor_id = $%d", pos)
		args = append(args, f.ActorID)
		pos++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, string(f.Kind))
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := scanMovement(rows, &m); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
