package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// CategoryUseCase casos de uso de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
	gate *inventory.Gate
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, gate *inventory.Gate) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, gate: gate}
}

// Create crea una categoría. Los nombres no se repiten (sin distinguir mayúsculas).
func (uc *CategoryUseCase) Create(ctx context.Context, actorID string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	actor, err := uc.gate.AuthorizeAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name requerido")
	}
	existing, err := uc.repo.FindByName(ctx, name, 1)
	if err != nil {
		return nil, fmt.Errorf("buscar categoría: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: la categoría %q ya existe", domain.ErrDuplicate, name)
	}
	cat := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// List lista todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context, actorID string) ([]dto.CategoryResponse, error) {
	if _, err := uc.gate.AuthorizeRead(ctx, actorID); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update renombra o cambia la descripción. Los nombres siguen sin repetirse.
func (uc *CategoryUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := uc.gate.AuthorizeAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if in.Name == nil && in.Description == nil {
		return nil, domain.Invalid("nada que actualizar")
	}
	var patch entity.CategoryPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name no puede quedar vacío")
		}
		existing, err := uc.repo.FindByName(ctx, name, 2)
		if err != nil {
			return nil, fmt.Errorf("buscar categoría: %w", err)
		}
		for _, c := range existing {
			if c.ID != id {
				return nil, fmt.Errorf("%w: la categoría %q ya existe", domain.ErrDuplicate, name)
			}
		}
		patch.Name = &name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		patch.Description = &desc
	}
	cat, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// Delete elimina una categoría sin ítems.
func (uc *CategoryUseCase) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uc.gate.AuthorizeAdmin(ctx, actorID); err != nil {
		return err
	}
	cat, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("consultar categoría: %w", err)
	}
	if cat == nil {
		return domain.NotFound("categoría %s no encontrada", id)
	}
	return uc.repo.Delete(ctx, id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
