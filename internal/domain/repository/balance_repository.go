package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// BalanceRepository puerto del saldo por ítem.
type BalanceRepository interface {
	// Create inserta el saldo inicial. Devuelve domain.ErrDuplicate si el ítem ya tiene saldo.
	Create(ctx context.Context, balance *entity.Balance) error
	Get(ctx context.Context, itemID string) (*entity.Balance, error)

	// CompareAndSwap escribe next sólo si el stock guardado sigue siendo expected.
	// Devuelve domain.ErrStaleBalance si otro movimiento lo cambió y domain.ErrNotFound si no hay fila.
	CompareAndSwap(ctx context.Context, itemID string, expected, next int64) error

	// SetMinimum cambia el umbral de reposición sin tocar el stock. domain.ErrNotFound si no hay fila.
	SetMinimum(ctx context.Context, itemID string, minimum int64) error
}
