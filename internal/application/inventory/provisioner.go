package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// NewItem datos para crear un ítem con su saldo inicial en cero.
type NewItem struct {
	Name       string
	Code       string
	Tag        string
	CategoryID string
	Attributes entity.ItemAttributes
	Minimum    int64
	Active     bool
	CreatedBy  string
}

// Provisioner crea Item + Balance(0) como una unidad lógica: si el saldo falla,
// elimina el ítem recién creado.
type Provisioner struct {
	items      repository.ItemRepository
	balances   repository.BalanceRepository
	categories repository.CategoryRepository
	observer   MovementObserver
	log        zerolog.Logger
	now        func() time.Time
}

// NewProvisioner construye el aprovisionador. observer puede ser nil.
func NewProvisioner(
	items repository.ItemRepository,
	balances repository.BalanceRepository,
	categories repository.CategoryRepository,
	observer MovementObserver,
	log zerolog.Logger,
) *Provisioner {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Provisioner{
		items:      items,
		balances:   balances,
		categories: categories,
		observer:   observer,
		log:        log.With().Str("component", "provisioner").Logger(),
		now:        time.Now,
	}
}

// Provision valida la categoría, crea el ítem y su saldo en cero.
func (p *Provisioner) Provision(ctx context.Context, in NewItem) (*entity.Item, *entity.Balance, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, domain.Invalid("name requerido para crear el ítem")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, nil, domain.Invalid("category_id requerido para crear el ítem")
	}
	if in.Minimum < 0 {
		return nil, nil, domain.Invalid("stock_minimum no puede ser negativo")
	}
	cat, err := p.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("consultar categoría: %w", err)
	}
	if cat == nil {
		return nil, nil, domain.NotFound("la categoría %s no existe", in.CategoryID)
	}

	now := p.now()
	item := &entity.Item{
		ID:         uuid.New().String(),
		Name:       name,
		Code:       strings.TrimSpace(in.Code),
		Tag:        strings.TrimSpace(in.Tag),
		CategoryID: cat.ID,
		Attributes: in.Attributes,
		Active:     in.Active,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.items.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, fmt.Errorf("%w: código o tag ya registrado: %w", domain.ErrConflict, err)
		}
		return nil, nil, fmt.Errorf("crear ítem: %w", err)
	}

	saga := NewSaga(p.log)
	saga.Add("eliminar ítem", func(ctx context.Context) error {
		return p.items.Delete(ctx, item.ID)
	})

	balance := &entity.Balance{ItemID: item.ID, Stock: 0, Minimum: in.Minimum, UpdatedAt: now}
	if err := p.balances.Create(ctx, balance); err != nil {
		compErr := saga.Unwind(ctx)
		p.observer.ObserveCompensation("eliminar ítem", compErr == nil)
		if compErr != nil {
			return nil, nil, fmt.Errorf("ítem creado pero saldo falló: %w (compensación: %w)", err, compErr)
		}
		return nil, nil, fmt.Errorf("ítem creado pero saldo falló: %w", err)
	}

	p.observer.ObserveProvisioned()
	p.log.Info().
		Str("item_id", item.ID).
		Str("name", item.Name).
		Str("category_id", item.CategoryID).
		Str("created_by", item.CreatedBy).
		Msg("ítem aprovisionado")
	return item, balance, nil
}
