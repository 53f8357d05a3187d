package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// candidateLimit cuántas coincidencias se traen para reportar ambigüedad.
const candidateLimit = 5

// ItemRef referencia laxa a un ítem tal como la escribe una persona o un lector RFID.
type ItemRef struct {
	ID           string
	Tag          string
	Code         string
	Name         string
	CategoryID   string
	CategoryName string
	Creation     CreationFields
}

// CreationFields atributos usados sólo si hay que crear el ítem.
type CreationFields struct {
	Description string
	Size        string
	Color       string
	Minimum     int64
}

// Empty indica que la referencia no trae ningún identificador.
func (r ItemRef) Empty() bool {
	return strings.TrimSpace(r.ID) == "" && strings.TrimSpace(r.Tag) == "" &&
		strings.TrimSpace(r.Code) == "" && strings.TrimSpace(r.Name) == ""
}

// Resolution resultado de resolver una referencia.
type Resolution struct {
	ItemID      string
	MatchedBy   string // id, tag, code, name o created
	Created     bool
	WasInactive bool
	TagAttached bool

	undo []sagaStep
}

// Compensate apila en saga lo necesario para deshacer la resolución: borrar el ítem
// creado o devolver el tag anterior.
func (r *Resolution) Compensate(saga *Saga) {
	for _, step := range r.undo {
		saga.Add(step.name, step.undo)
	}
}

// resolveStrategy un paso de la cadena: cero coincidencias continúa, una gana, varias es ambigüedad.
type resolveStrategy struct {
	field    string
	value    func(ItemRef) string
	find     func(ctx context.Context, value string) ([]*entity.Item, error)
	required bool // si aplica y no encuentra, falla en lugar de continuar
}

// Resolver traduce una ItemRef a un único id de ítem, creando el ítem cuando se permite.
type Resolver struct {
	items       repository.ItemRepository
	categories  repository.CategoryRepository
	provisioner *Provisioner
	strategies  []resolveStrategy
	log         zerolog.Logger
}

// NewResolver construye el resolvedor con la cadena id → tag → código → nombre.
func NewResolver(
	items repository.ItemRepository,
	categories repository.CategoryRepository,
	provisioner *Provisioner,
	log zerolog.Logger,
) *Resolver {
	r := &Resolver{
		items:       items,
		categories:  categories,
		provisioner: provisioner,
		log:         log.With().Str("component", "resolver").Logger(),
	}
	r.strategies = []resolveStrategy{
		{
			field:    "id",
			value:    func(ref ItemRef) string { return ref.ID },
			find:     r.findByID,
			required: true,
		},
		{
			field: "tag",
			value: func(ref ItemRef) string { return ref.Tag },
			find: func(ctx context.Context, v string) ([]*entity.Item, error) {
				return items.FindByTag(ctx, v, candidateLimit)
			},
		},
		{
			field: "code",
			value: func(ref ItemRef) string { return ref.Code },
			find: func(ctx context.Context, v string) ([]*entity.Item, error) {
				return items.FindByCode(ctx, v, candidateLimit)
			},
		},
		{
			field: "name",
			value: func(ref ItemRef) string { return ref.Name },
			find: func(ctx context.Context, v string) ([]*entity.Item, error) {
				return items.FindByName(ctx, v, candidateLimit)
			},
		},
	}
	return r
}

func (r *Resolver) findByID(ctx context.Context, id string) ([]*entity.Item, error) {
	item, err := r.items.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	return []*entity.Item{item}, nil
}

// Resolve aplica la cadena de estrategias; si nada coincide y hay nombre + categoría, crea el ítem.
func (r *Resolver) Resolve(ctx context.Context, ref ItemRef, actorID string) (*Resolution, error) {
	item, matchedBy, err := r.match(ctx, ref)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return r.provision(ctx, ref, actorID)
	}

	res := &Resolution{ItemID: item.ID, MatchedBy: matchedBy, WasInactive: !item.Active}
	previousTag := item.Tag
	attached, err := r.attachTag(ctx, item, strings.TrimSpace(ref.Tag))
	if err != nil {
		return nil, err
	}
	if attached {
		res.TagAttached = true
		res.undo = append(res.undo, sagaStep{name: "restaurar tag", undo: func(ctx context.Context) error {
			return r.items.SetTag(ctx, item.ID, previousTag)
		}})
	}
	return res, nil
}

func (r *Resolver) match(ctx context.Context, ref ItemRef) (*entity.Item, string, error) {
	for _, s := range r.strategies {
		v := strings.TrimSpace(s.value(ref))
		if v == "" {
			continue
		}
		found, err := s.find(ctx, v)
		if err != nil {
			return nil, "", fmt.Errorf("buscar ítem por %s: %w", s.field, err)
		}
		switch len(found) {
		case 0:
			if s.required {
				return nil, "", domain.NotFound("no existe ítem con %s %q", s.field, v)
			}
		case 1:
			return found[0], s.field, nil
		default:
			return nil, "", &domain.AmbiguousError{Field: s.field, Value: v, Candidates: itemCandidates(found)}
		}
	}
	return nil, "", nil
}

// attachTag vincula el tag al ítem si aún no lo tiene. Idempotente.
func (r *Resolver) attachTag(ctx context.Context, item *entity.Item, tag string) (bool, error) {
	if tag == "" || item.Tag == tag {
		return false, nil
	}
	owners, err := r.items.FindByTag(ctx, tag, candidateLimit)
	if err != nil {
		return false, fmt.Errorf("verificar tag: %w", err)
	}
	for _, o := range owners {
		if o.ID != item.ID {
			return false, domain.Conflict("el tag %q ya pertenece al ítem %s", tag, o.ID)
		}
	}
	if len(owners) > 0 {
		return false, nil
	}
	if err := r.items.SetTag(ctx, item.ID, tag); err != nil {
		return false, fmt.Errorf("vincular tag: %w", err)
	}
	r.log.Info().Str("item_id", item.ID).Str("tag", tag).Msg("tag vinculado")
	return true, nil
}

func (r *Resolver) provision(ctx context.Context, ref ItemRef, actorID string) (*Resolution, error) {
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, domain.NotFound("ítem no encontrado; para crearlo envíe name y category_id")
	}
	categoryID, err := r.resolveCategory(ctx, ref)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		return nil, domain.NotFound("ítem %q no encontrado; para crearlo envíe también category_id", name)
	}
	item, _, err := r.provisioner.Provision(ctx, NewItem{
		Name:       name,
		Code:       ref.Code,
		Tag:        ref.Tag,
		CategoryID: categoryID,
		Attributes: entity.ItemAttributes{
			Description: ref.Creation.Description,
			Size:        ref.Creation.Size,
			Color:       ref.Creation.Color,
		},
		Minimum:   ref.Creation.Minimum,
		Active:    true,
		CreatedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	return &Resolution{
		ItemID:    item.ID,
		MatchedBy: "created",
		Created:   true,
		undo: []sagaStep{{name: "eliminar ítem creado", undo: func(ctx context.Context) error {
			return r.items.Delete(ctx, item.ID)
		}}},
	}, nil
}

// resolveCategory usa category_id si viene; si no, busca la categoría por nombre.
func (r *Resolver) resolveCategory(ctx context.Context, ref ItemRef) (string, error) {
	if id := strings.TrimSpace(ref.CategoryID); id != "" {
		return id, nil
	}
	name := strings.TrimSpace(ref.CategoryName)
	if name == "" {
		return "", nil
	}
	cats, err := r.categories.FindByName(ctx, name, candidateLimit)
	if err != nil {
		return "", fmt.Errorf("buscar categoría: %w", err)
	}
	switch len(cats) {
	case 0:
		return "", nil
	case 1:
		return cats[0].ID, nil
	}
	candidates := make([]domain.Candidate, 0, len(cats))
	for _, c := range cats {
		candidates = append(candidates, domain.Candidate{ID: c.ID, Name: c.Name, Active: true})
	}
	return "", &domain.AmbiguousError{Field: "category", Value: name, Candidates: candidates}
}

func itemCandidates(items []*entity.Item) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Candidate{ID: it.ID, Name: it.Name, Code: it.Code, Tag: it.Tag, Active: it.Active})
	}
	return out
}
