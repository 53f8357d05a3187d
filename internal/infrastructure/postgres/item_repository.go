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

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `i.id, i.name, COALESCE(i.code, ''), COALESCE(i.tag, ''), i.category_id, i.attributes,
	i.active, COALESCE(i.created_by, ''), i.created_at, i.updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row, it *entity.Item, extra ...any) error {
	dest := []any{&it.ID, &it.Name, &it.Code, &it.Tag, &it.CategoryID, &it.Attributes,
		&it.Active, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create persiste un nuevo ítem. Código o tag repetidos → domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query := `
		INSERT INTO items (id, name, code, tag, category_id, attributes, active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.Name, nullIfEmpty(it.Code), nullIfEmpty(it.Tag), it.CategoryID, it.Attributes,
		it.Active, nullIfEmpty(it.CreatedBy), it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, constraintName(err))
		}
		if isForeignKeyViolation(err) {
			return domain.NotFound("la categoría %s no existe", it.CategoryID)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var it entity.Item
	err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, id), &it)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepo) FindByTag(ctx context.Context, tag string, limit int) ([]*entity.Item, error) {
	return r.findWhere(ctx, `i.tag = $1`, tag, limit)
}

func (r *ItemRepo) FindByCode(ctx context.Context, code string, limit int) ([]*entity.Item, error) {
	return r.findWhere(ctx, `i.code = $1`, code, limit)
}

// FindByName igualdad sin distinguir mayúsculas ni espacios externos.
func (r *ItemRepo) FindByName(ctx context.Context, name string, limit int) ([]*entity.Item, error) {
	return r.findWhere(ctx, `lower(btrim(i.name)) = lower($1)`, strings.TrimSpace(name), limit)
}

func (r *ItemRepo) findWhere(ctx context.Context, cond, value string, limit int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE ` + cond + ` ORDER BY lower(i.name), i.id LIMIT $2`
	rows, err := r.q.Query(ctx, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// SetTag vincula el tag. Si otro ítem ya lo tiene → domain.ErrConflict.
func (r *ItemRepo) SetTag(ctx context.Context, id, tag string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET tag = $2, updated_at = now() WHERE id = $1`, id, nullIfEmpty(tag))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("el tag %q ya pertenece a otro ítem", tag)
		}
		return fmt.Errorf("set item tag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ítem %s", id)
	}
	return nil
}

func (r *ItemRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set item active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ítem %s", id)
	}
	return nil
}

// Update aplica el patch en un solo UPDATE; los atributos se fusionan sobre el JSONB existente.
func (r *ItemRepo) Update(ctx context.Context, id string, patch entity.ItemPatch) (*entity.Item, error) {
	attrs := map[string]string{}
	if patch.Description != nil {
		attrs["description"] = *patch.Description
	}
	if patch.Size != nil {
		attrs["size"] = *patch.Size
	}
	if patch.Color != nil {
		attrs["color"] = *patch.Color
	}
	var code *string
	if patch.Code != nil {
		code = nullIfEmpty(*patch.Code)
	}
	query := `
		UPDATE items AS i SET
			name        = COALESCE($2, i.name),
			code        = CASE WHEN $3 THEN $4 ELSE i.code END,
			category_id = COALESCE($5, i.category_id),
			attributes  = i.attributes || $6::jsonb,
			active      = COALESCE($7, i.active),
			updated_at  = now()
		WHERE i.id = $1
		RETURNING ` + itemColumns
	var it entity.Item
	err := scanItem(r.q.QueryRow(ctx, query,
		id, patch.Name, patch.Code != nil, code, patch.CategoryID, attrs, patch.Active,
	), &it)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.NotFound("ítem %s", id)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicate, constraintName(err))
		case isForeignKeyViolation(err):
			return nil, domain.NotFound("la categoría %s no existe", *patch.CategoryID)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &it, nil
}

// Delete elimina el ítem (y su saldo por cascada). Con movimientos en el kardex → domain.ErrConflict.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Conflict("el ítem %s tiene movimientos registrados", id)
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ListWithBalance lista ítems con su saldo, ordenados por nombre.
func (r *ItemRepo) ListWithBalance(ctx context.Context, f entity.ItemFilter) ([]entity.ItemWithBalance, error) {
	query := `
		SELECT ` + itemColumns + `, COALESCE(b.stock, 0), COALESCE(b.minimum, 0), COALESCE(b.updated_at, i.updated_at)
		FROM items i LEFT JOIN balances b ON b.item_id = i.id
		WHERE TRUE`
	var args []any
	pos := 1
	if s := strings.TrimSpace(f.Search); s != "" {
		query += fmt.Sprintf(` AND (i.name ILIKE $%d OR i.code ILIKE $%d)`, pos, pos)
		args = append(args, "%"+escapeLike(s)+"%")
		pos++
	}
	if f.CategoryID != "" {
		query += fmt.Sprintf(` AND i.category_id = $%d`, pos)
		args = append(args, f.CategoryID)
		pos++
	}
	if f.Active != nil {
		query += fmt.Sprintf(` AND i.active = $%d`, pos)
		args = append(args, *f.Active)
		pos++
	}
	query += fmt.Sprintf(` ORDER BY lower(i.name), i.id LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []entity.ItemWithBalance
	for rows.Next() {
		var row entity.ItemWithBalance
		if err := scanItem(rows, &row.Item, &row.Balance.Stock, &row.Balance.Minimum, &row.Balance.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		row.Balance.ItemID = row.Item.ID
		list = append(list, row)
	}
	return list, rows.Err()
}
