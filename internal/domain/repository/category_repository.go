package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// FindByName igualdad sin distinguir mayúsculas, hasta limit registros.
	FindByName(ctx context.Context, name string, limit int) ([]*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	// Update domain.ErrNotFound si no existe.
	Update(ctx context.Context, id string, patch entity.CategoryPatch) (*entity.Category, error)
	// Delete domain.ErrConflict si algún ítem la referencia.
	Delete(ctx context.Context, id string) error
}
