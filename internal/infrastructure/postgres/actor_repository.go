package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.ActorRepository = (*ActorRepo)(nil)

// ActorRepo lee rol y estado de la tabla users.
type ActorRepo struct {
	q Querier
}

// NewActorRepository construye el adaptador.
func NewActorRepository(q Querier) *ActorRepo {
	return &ActorRepo{q: q}
}

// GetByID obtiene el perfil. (nil, nil) si no existe.
func (r *ActorRepo) GetByID(ctx context.Context, id string) (*entity.Actor, error) {
	var a entity.Actor
	err := r.q.QueryRow(ctx, `SELECT id, name, role, is_active FROM users WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Role, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &a, nil
}

// Upsert registra o actualiza un perfil. Lo usan el arranque con usuarios semilla y las pruebas.
func (r *ActorRepo) Upsert(ctx context.Context, a *entity.Actor) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, name, role, is_active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, is_active = EXCLUDED.is_active`,
		a.ID, a.Name, a.Role, a.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
