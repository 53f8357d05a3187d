package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Lo usan el arranque (esquema, actores semilla); los movimientos no abren transacción.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con un Querier atado a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Bootstrap aplica el esquema y registra los actores semilla en una sola transacción.
func (r *TxRunner) Bootstrap(ctx context.Context, migrate bool, seeds []entity.Actor) error {
	return r.Run(ctx, func(q Querier) error {
		if migrate {
			if err := Migrate(ctx, q); err != nil {
				return err
			}
		}
		actors := NewActorRepository(q)
		for i := range seeds {
			if err := actors.Upsert(ctx, &seeds[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
