package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.ActorRepository    = (*ActorRepository)(nil)
)

// CategoryRepository categorías en memoria.
type CategoryRepository struct {
	s *Store
}

// NewCategoryRepository construye el repositorio.
func NewCategoryRepository(s *Store) *CategoryRepository {
	return &CategoryRepository{s: s}
}

func (r *CategoryRepository) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; ok {
		return fmt.Errorf("%w: categoría %s", domain.ErrDuplicate, c.ID)
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepository) FindByName(_ context.Context, name string, limit int) ([]*entity.Category, error) {
	want := fold(name)
	all := r.sorted()
	var out []*entity.Category
	for _, c := range all {
		if fold(c.Name) == want {
			out = append(out, c)
		}
	}
	return out[:capLimit(len(out), limit)], nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*entity.Category, error) {
	return r.sorted(), nil
}

func (r *CategoryRepository) Update(_ context.Context, id string, patch entity.CategoryPatch) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.NotFound("categoría %s", id)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	r.s.categories[id] = c
	return &c, nil
}

// Delete rechaza la baja si algún ítem usa la categoría.
func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.CategoryID == id {
			return domain.Conflict("la categoría %s tiene ítems asociados", id)
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepository) sorted() []*entity.Category {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := fold(out[i].Name), fold(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ActorRepository perfiles en memoria; se cargan con Store.PutActor.
type ActorRepository struct {
	s *Store
}

// NewActorRepository construye el repositorio.
func NewActorRepository(s *Store) *ActorRepository {
	return &ActorRepository{s: s}
}

func (r *ActorRepository) GetByID(_ context.Context, id string) (*entity.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.actors[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
