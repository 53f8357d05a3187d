package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepository)(nil)

// ItemRepository implementación en memoria de repository.ItemRepository.
type ItemRepository struct {
	s *Store
}

// NewItemRepository construye el repositorio.
func NewItemRepository(s *Store) *ItemRepository {
	return &ItemRepository{s: s}
}

// Create inserta el ítem validando unicidad de código y tag.
func (r *ItemRepository) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return fmt.Errorf("%w: ítem %s", domain.ErrDuplicate, item.ID)
	}
	for _, existing := range r.s.items {
		if item.Code != "" && existing.Code == item.Code {
			return fmt.Errorf("%w: código %q", domain.ErrDuplicate, item.Code)
		}
		if item.Tag != "" && existing.Tag == item.Tag {
			return fmt.Errorf("%w: tag %q", domain.ErrDuplicate, item.Tag)
		}
	}
	r.s.items[item.ID] = *item
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ItemRepository) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepository) FindByTag(_ context.Context, tag string, limit int) ([]*entity.Item, error) {
	return r.find(func(it entity.Item) bool { return it.Tag != "" && it.Tag == tag }, limit), nil
}

func (r *ItemRepository) FindByCode(_ context.Context, code string, limit int) ([]*entity.Item, error) {
	return r.find(func(it entity.Item) bool { return it.Code != "" && it.Code == code }, limit), nil
}

func (r *ItemRepository) FindByName(_ context.Context, name string, limit int) ([]*entity.Item, error) {
	want := fold(name)
	return r.find(func(it entity.Item) bool { return fold(it.Name) == want }, limit), nil
}

func (r *ItemRepository) find(match func(entity.Item) bool, limit int) []*entity.Item {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if match(it) {
			cp := it
			out = append(out, &cp)
		}
	}
	sortItemsByName(out)
	return out[:capLimit(len(out), limit)]
}

// SetTag vincula el tag; ErrConflict si pertenece a otro ítem.
func (r *ItemRepository) SetTag(_ context.Context, id, tag string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return domain.NotFound("ítem %s", id)
	}
	for otherID, other := range r.s.items {
		if tag != "" && otherID != id && other.Tag == tag {
			return domain.Conflict("el tag %q ya pertenece al ítem %s", tag, otherID)
		}
	}
	it.Tag = tag
	it.UpdatedAt = time.Now()
	r.s.items[id] = it
	return nil
}

func (r *ItemRepository) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return domain.NotFound("ítem %s", id)
	}
	it.Active = active
	it.UpdatedAt = time.Now()
	r.s.items[id] = it
	return nil
}

// Update aplica el patch validando que el código no lo use otro ítem.
func (r *ItemRepository) Update(_ context.Context, id string, patch entity.ItemPatch) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.NotFound("ítem %s", id)
	}
	patch.Apply(&it)
	if it.Code != "" {
		for otherID, other := range r.s.items {
			if otherID != id && other.Code == it.Code {
				return nil, fmt.Errorf("%w: código %q", domain.ErrDuplicate, it.Code)
			}
		}
	}
	it.UpdatedAt = time.Now()
	r.s.items[id] = it
	return &it, nil
}

// Delete elimina el ítem y su saldo; no falla si ya no existe.
func (r *ItemRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	delete(r.s.balances, id)
	return nil
}

// ListWithBalance filtra, ordena por nombre y pagina.
func (r *ItemRepository) ListWithBalance(_ context.Context, f entity.ItemFilter) ([]entity.ItemWithBalance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := fold(f.Search)
	var matched []*entity.Item
	for _, it := range r.s.items {
		if f.CategoryID != "" && it.CategoryID != f.CategoryID {
			continue
		}
		if f.Active != nil && it.Active != *f.Active {
			continue
		}
		if search != "" && !strings.Contains(fold(it.Name), search) && !strings.Contains(fold(it.Code), search) {
			continue
		}
		cp := it
		matched = append(matched, &cp)
	}
	sortItemsByName(matched)

	start := min(max(f.Offset, 0), len(matched))
	matched = matched[start:]
	matched = matched[:capLimit(len(matched), f.Limit)]

	out := make([]entity.ItemWithBalance, 0, len(matched))
	for _, it := range matched {
		out = append(out, entity.ItemWithBalance{Item: *it, Balance: r.s.balances[it.ID]})
	}
	return out, nil
}
