package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// LedgerRepository kardex de sólo inserción: no hay Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List ordena por fecha descendente.
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
}
