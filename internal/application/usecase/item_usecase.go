package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// ItemUseCase casos de uso de ítems. El stock sólo cambia vía movimientos.
type ItemUseCase struct {
	items       repository.ItemRepository
	balances    repository.BalanceRepository
	ledger      repository.LedgerRepository
	categories  repository.CategoryRepository
	provisioner *inventory.Provisioner
	gate        *inventory.Gate
	log         zerolog.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	items repository.ItemRepository,
	balances repository.BalanceRepository,
	ledger repository.LedgerRepository,
	categories repository.CategoryRepository,
	provisioner *inventory.Provisioner,
	gate *inventory.Gate,
	log zerolog.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		items:       items,
		balances:    balances,
		ledger:      ledger,
		categories:  categories,
		provisioner: provisioner,
		gate:        gate,
		log:         log.With().Str("component", "item_usecase").Logger(),
	}
}

// Create crea un ítem con saldo 0. Sólo roles privilegiados.
func (uc *ItemUseCase) Create(ctx context.Context, actorID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	actor, err := uc.gate.AuthorizeAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	item, bal, err := uc.provisioner.Provision(ctx, inventory.NewItem{
		Name:       in.Name,
		Code:       in.Code,
		Tag:        in.Tag,
		CategoryID: in.CategoryID,
		Attributes: entity.ItemAttributes{
			Description: in.Description,
			Size:        in.Size,
			Color:       in.Color,
		},
		Minimum:   in.StockMinimum,
		Active:    active,
		CreatedBy: actor.ID,
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item, bal), nil
}

// GetByID obtiene un ítem con su saldo. Devuelve (nil, nil) si no existe.
func (uc *ItemUseCase) GetByID(ctx context.Context, actorID, id string) (*dto.ItemResponse, error) {
	if _, err := uc.gate.AuthorizeRead(ctx, actorID); err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	bal, err := uc.balances.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer saldo: %w", err)
	}
	return toItemResponse(item, bal), nil
}

// Update aplica cambios administrativos. Desactivar exige stock 0, igual que en los movimientos.
func (uc *ItemUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if _, err := uc.gate.AuthorizeAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	patch, err := itemPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Empty() && in.StockMinimum == nil {
		return nil, domain.Invalid("nada que actualizar")
	}
	if in.StockMinimum != nil && *in.StockMinimum < 0 {
		return nil, domain.Invalid("stock_minimum no puede ser negativo")
	}

	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar ítem: %w", err)
	}
	if item == nil {
		return nil, domain.NotFound("ítem %s no encontrado", id)
	}
	bal, err := uc.balances.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer saldo: %w", err)
	}
	if bal == nil {
		return nil, domain.NotFound("el ítem %s no tiene saldo registrado", id)
	}
	if patch.CategoryID != nil {
		cat, err := uc.categories.GetByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("consultar categoría: %w", err)
		}
		if cat == nil {
			return nil, domain.NotFound("la categoría %s no existe", *patch.CategoryID)
		}
	}
	if patch.Active != nil && !*patch.Active && bal.Stock != 0 {
		return nil, domain.Conflict("para desactivar el ítem el stock debe ser 0 (actual %d)", bal.Stock)
	}

	saga := inventory.NewSaga(uc.log)
	if in.StockMinimum != nil && *in.StockMinimum != bal.Minimum {
		if err := uc.balances.SetMinimum(ctx, id, *in.StockMinimum); err != nil {
			return nil, fmt.Errorf("actualizar stock mínimo: %w", err)
		}
		previous := bal.Minimum
		saga.Add("restaurar stock mínimo", func(ctx context.Context) error {
			return uc.balances.SetMinimum(ctx, id, previous)
		})
		bal.Minimum = *in.StockMinimum
	}
	if !patch.Empty() {
		updated, err := uc.items.Update(ctx, id, patch)
		if err != nil {
			if compErr := saga.Unwind(ctx); compErr != nil {
				return nil, fmt.Errorf("actualizar ítem: %w (compensación: %w)", err, compErr)
			}
			return nil, err
		}
		item = updated
	}
	return toItemResponse(item, bal), nil
}

// Delete elimina un ítem sin stock ni movimientos; con historial en el kardex sólo puede desactivarse.
func (uc *ItemUseCase) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uc.gate.AuthorizeAdmin(ctx, actorID); err != nil {
		return err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("consultar ítem: %w", err)
	}
	if item == nil {
		return domain.NotFound("ítem %s no encontrado", id)
	}
	bal, err := uc.balances.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("leer saldo: %w", err)
	}
	if bal != nil && bal.Stock != 0 {
		return domain.Conflict("el ítem %s tiene stock %d; registre la salida antes de eliminarlo", id, bal.Stock)
	}
	movs, err := uc.ledger.List(ctx, entity.MovementFilter{ItemID: id, Limit: 1})
	if err != nil {
		return fmt.Errorf("consultar kardex: %w", err)
	}
	if len(movs) > 0 {
		return domain.Conflict("el ítem %s tiene movimientos registrados; desactívelo en su lugar", id)
	}
	if err := uc.items.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("item_id", id).Str("actor_id", actorID).Msg("ítem eliminado")
	return nil
}

func itemPatch(in dto.UpdateItemRequest) (entity.ItemPatch, error) {
	patch := entity.ItemPatch{
		Description: in.Description,
		Size:        in.Size,
		Color:       in.Color,
		Active:      in.Active,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return patch, domain.Invalid("name no puede quedar vacío")
		}
		patch.Name = &name
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		patch.Code = &code
	}
	if in.CategoryID != nil {
		cat := strings.TrimSpace(*in.CategoryID)
		if cat == "" {
			return patch, domain.Invalid("category_id no puede quedar vacío")
		}
		patch.CategoryID = &cat
	}
	return patch, nil
}

// List lista ítems con saldo y bandera de reposición.
func (uc *ItemUseCase) List(ctx context.Context, actorID string, in dto.ItemListRequest) (*dto.ItemListResponse, error) {
	if _, err := uc.gate.AuthorizeRead(ctx, actorID); err != nil {
		return nil, err
	}
	in.DefaultPage()
	filter := entity.ItemFilter{
		Search:     strings.TrimSpace(in.Search),
		CategoryID: strings.TrimSpace(in.CategoryID),
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if s := strings.TrimSpace(in.Active); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			return nil, domain.Invalid("active debe ser true o false")
		}
		filter.Active = &active
	}
	list, err := uc.items.ListWithBalance(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for i := range list {
		items = append(items, *toItemResponse(&list[i].Item, &list[i].Balance))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toItemResponse(it *entity.Item, bal *entity.Balance) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	out := &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Code:        it.Code,
		Tag:         it.Tag,
		CategoryID:  it.CategoryID,
		Description: it.Attributes.Description,
		Size:        it.Attributes.Size,
		Color:       it.Attributes.Color,
		Active:      it.Active,
		CreatedBy:   it.CreatedBy,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if bal != nil {
		out.Stock = bal.Stock
		out.StockMinimum = bal.Minimum
		out.BelowMinimum = bal.BelowMinimum()
	}
	return out
}
