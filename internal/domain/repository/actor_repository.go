package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ActorRepository entrega rol y estado de un usuario para la compuerta de autorización.
type ActorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Actor, error)
}
