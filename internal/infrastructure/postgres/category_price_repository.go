package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

var _ repository.CategoryPriceRepository = (*CategoryPriceRepo)(nil)

const priceSelect = `
	SELECT p.id, p.warehouse_id, p.category_id, COALESCE(c.name, ''), p.price, p.driver_type,
	       p.effective_date, p.created_at, p.updated_at
	FROM category_prices p
	LEFT JOIN categories c ON c.id = p.category_id`

const priceOrder = ` ORDER BY COALESCE(c.name, ''), p.category_id, p.driver_type, p.effective_date DESC`

// CategoryPriceRepo implementación de CategoryPriceRepository sobre PostgreSQL.
type CategoryPriceRepo struct {
	q Querier
}

// NewCategoryPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryPriceRepository(q Querier) *CategoryPriceRepo {
	return &CategoryPriceRepo{q: q}
}

// Upsert inserta o reemplaza el precio de la llave única; devuelve en p el id y created_at vigentes.
func (r *CategoryPriceRepo) Upsert(ctx context.Context, p *entity.CategoryPrice) error {
	query := `
		INSERT INTO category_prices (id, warehouse_id, category_id, price, driver_type, effective_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (warehouse_id, category_id, driver_type, effective_date)
		DO UPDATE SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.WarehouseID, p.CategoryID, p.Price, p.DriverType,
		entity.TruncateDate(p.EffectiveDate), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return wrapErr("upsert category price", err)
	}
	return nil
}

func (r *CategoryPriceRepo) GetByID(ctx context.Context, id string) (*entity.CategoryPrice, error) {
	p, err := scanPrice(r.q.QueryRow(ctx, priceSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get category price", err)
	}
	return p, nil
}

func (r *CategoryPriceRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.CategoryPrice, error) {
	return r.query(ctx, "list category prices", priceSelect+` WHERE p.warehouse_id = $1`+priceOrder, warehouseID)
}

func (r *CategoryPriceRepo) ListByWarehouseAndCategory(ctx context.Context, warehouseID, categoryID string) ([]*entity.CategoryPrice, error) {
	return r.query(ctx, "list category prices by category",
		priceSelect+` WHERE p.warehouse_id = $1 AND p.category_id = $2`+priceOrder, warehouseID, categoryID)
}

func (r *CategoryPriceRepo) PricedCategoryIDs(ctx context.Context, warehouseID string) ([]string, error) {
	query := `SELECT DISTINCT category_id FROM category_prices`
	args := []any{}
	if warehouseID != "" {
		query += ` WHERE warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY category_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("priced categories", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("priced categories", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("priced categories", err)
	}
	return ids, nil
}

func (r *CategoryPriceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM category_prices WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete category price", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryPriceRepo) DeleteByCategory(ctx context.Context, categoryID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM category_prices WHERE category_id = $1`, categoryID); err != nil {
		return wrapErr("delete category prices", err)
	}
	return nil
}

func (r *CategoryPriceRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.CategoryPrice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	out := make([]*entity.CategoryPrice, 0)
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

func scanPrice(row pgx.Row) (*entity.CategoryPrice, error) {
	var p entity.CategoryPrice
	err := row.Scan(&p.ID, &p.WarehouseID, &p.CategoryID, &p.CategoryName, &p.Price, &p.DriverType,
		&p.EffectiveDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.EffectiveDate = entity.TruncateDate(p.EffectiveDate)
	return &p, nil
}
