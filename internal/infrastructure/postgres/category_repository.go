package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, name, description, COALESCE(created_by, ''), created_at`

// CategoryRepo categorías sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func scanCategory(row pgx.Row, c *entity.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt)
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, name, description, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, nullIfEmpty(c.CreatedBy), c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var c entity.Category
	err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string, limit int) ([]*entity.Category, error) {
	return r.list(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE lower(btrim(name)) = lower($1) ORDER BY lower(name), id LIMIT $2`,
		strings.TrimSpace(name), limit)
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY lower(name), id`)
}

func (r *CategoryRepo) Update(ctx context.Context, id string, patch entity.CategoryPatch) (*entity.Category, error) {
	var c entity.Category
	err := scanCategory(r.q.QueryRow(ctx,
		`UPDATE categories SET name = COALESCE($2, name), description = COALESCE($3, description)
		 WHERE id = $1 RETURNING `+categoryColumns,
		id, patch.Name, patch.Description), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("categoría %s", id)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// Delete con ítems asociados → domain.ErrConflict (llave foránea).
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Conflict("la categoría %s tiene ítems asociados", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
