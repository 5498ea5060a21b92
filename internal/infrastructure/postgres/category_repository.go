package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

// CategoryRepo implementación de CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert category", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c, err := scanCategory(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get category", err)
	}
	return c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Description, c.IsActive, c.UpdatedAt)
	if err != nil {
		return wrapErr("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at ASC, id ASC`
	return r.query(ctx, "list categories", query)
}

func (r *CategoryRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Category, error) {
	if len(ids) == 0 {
		return []*entity.Category{}, nil
	}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`
	return r.query(ctx, "list categories by ids", query, ids)
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return wrapErr("delete category", err)
	}
	return nil
}

func (r *CategoryRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, wrapErr("delete categories", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CategoryRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	out := make([]*entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
