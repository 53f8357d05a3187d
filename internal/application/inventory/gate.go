package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// Gate compuerta de autorización: consulta rol y estado del actor en cada operación.
// El rol del token no es autoritativo; manda el perfil persistido.
type Gate struct {
	actors     repository.ActorRepository
	mutators   map[string]struct{}
	privileged map[string]struct{}
}

// NewGate construye la compuerta. mutationRoles pueden mover inventario;
// privilegedRoles además ven el historial de todos los usuarios y crean ítems.
func NewGate(actors repository.ActorRepository, mutationRoles, privilegedRoles []string) *Gate {
	return &Gate{
		actors:     actors,
		mutators:   roleSet(mutationRoles),
		privileged: roleSet(privilegedRoles),
	}
}

func roleSet(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r = normalizeRole(r); r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// AuthorizeRead exige sólo una identidad válida y activa.
func (g *Gate) AuthorizeRead(ctx context.Context, actorID string) (*entity.Actor, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthorized
	}
	actor, err := g.actors.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("consultar perfil: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: perfil no encontrado", domain.ErrForbidden)
	}
	if !actor.Active {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	return actor, nil
}

// AuthorizeMutation exige identidad activa y un rol dentro del conjunto permitido.
func (g *Gate) AuthorizeMutation(ctx context.Context, actorID string) (*entity.Actor, error) {
	actor, err := g.AuthorizeRead(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, ok := g.mutators[normalizeRole(actor.Role)]; !ok {
		return nil, fmt.Errorf("%w: rol %q no autorizado para mover inventario", domain.ErrForbidden, actor.Role)
	}
	return actor, nil
}

// AuthorizeAdmin exige identidad activa con rol privilegiado.
func (g *Gate) AuthorizeAdmin(ctx context.Context, actorID string) (*entity.Actor, error) {
	actor, err := g.AuthorizeRead(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !g.IsPrivileged(actor) {
		return nil, fmt.Errorf("%w: se requiere rol privilegiado", domain.ErrForbidden)
	}
	return actor, nil
}

// IsPrivileged indica si el actor ve datos de otros usuarios.
func (g *Gate) IsPrivileged(actor *entity.Actor) bool {
	if actor == nil {
		return false
	}
	_, ok := g.privileged[normalizeRole(actor.Role)]
	return ok
}
