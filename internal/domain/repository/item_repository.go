package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// Los métodos Get devuelven (nil, nil) cuando el registro no existe.
type ItemRepository interface {
	// Create persiste un ítem nuevo. Devuelve domain.ErrDuplicate si el código o el tag ya existen.
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)

	// FindByTag, FindByCode: coincidencia exacta. FindByName: igualdad sin distinguir mayúsculas.
	// Devuelven a lo sumo limit registros para poder detectar ambigüedad sin traer la tabla.
	FindByTag(ctx context.Context, tag string, limit int) ([]*entity.Item, error)
	FindByCode(ctx context.Context, code string, limit int) ([]*entity.Item, error)
	FindByName(ctx context.Context, name string, limit int) ([]*entity.Item, error)

	// SetTag vincula el tag al ítem; tag vacío lo desvincula. Devuelve domain.ErrConflict si el tag pertenece a otro ítem.
	SetTag(ctx context.Context, id, tag string) error
	SetActive(ctx context.Context, id string, active bool) error

	// Update aplica un patch administrativo y devuelve el ítem resultante.
	// domain.ErrNotFound si no existe; domain.ErrDuplicate si el código ya lo usa otro ítem.
	Update(ctx context.Context, id string, patch entity.ItemPatch) (*entity.Item, error)

	// Delete elimina el ítem y su saldo. Lo usan las compensaciones y la baja administrativa.
	Delete(ctx context.Context, id string) error

	// ListWithBalance lista ítems con su saldo, ordenados por nombre.
	ListWithBalance(ctx context.Context, filter entity.ItemFilter) ([]entity.ItemWithBalance, error)
}
