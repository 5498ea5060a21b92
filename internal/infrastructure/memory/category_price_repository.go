package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

type priceRepo struct {
	s    *Store
	inTx bool
}

func samePriceKey(a, b *entity.CategoryPrice) bool {
	return a.WarehouseID == b.WarehouseID &&
		a.CategoryID == b.CategoryID &&
		a.DriverType == b.DriverType &&
		entity.SameDate(a.EffectiveDate, b.EffectiveDate)
}

func (r *priceRepo) Upsert(ctx context.Context, p *entity.CategoryPrice) error {
	return r.s.do(ctx, r.inTx, "prices.upsert", func(st *state) error {
		for _, cur := range st.prices {
			if samePriceKey(cur, p) {
				p.ID = cur.ID
				p.CreatedAt = cur.CreatedAt
				break
			}
		}
		cp := *p
		cp.CategoryName = ""
		st.prices[p.ID] = &cp
		st.touch(p.ID)
		return nil
	})
}

func (r *priceRepo) GetByID(ctx context.Context, id string) (*entity.CategoryPrice, error) {
	var out *entity.CategoryPrice
	err := r.s.do(ctx, r.inTx, "prices.get", func(st *state) error {
		if p, ok := st.prices[id]; ok {
			out = withName(st, p)
		}
		return nil
	})
	return out, err
}

func (r *priceRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.CategoryPrice, error) {
	return r.list(ctx, "prices.list", func(p *entity.CategoryPrice) bool {
		return p.WarehouseID == warehouseID
	})
}

func (r *priceRepo) ListByWarehouseAndCategory(ctx context.Context, warehouseID, categoryID string) ([]*entity.CategoryPrice, error) {
	return r.list(ctx, "prices.list_by_category", func(p *entity.CategoryPrice) bool {
		return p.WarehouseID == warehouseID && p.CategoryID == categoryID
	})
}

// list ordena como el repositorio SQL: categoría, tipo de conductor y fecha efectiva descendente.
func (r *priceRepo) list(ctx context.Context, op string, match func(*entity.CategoryPrice) bool) ([]*entity.CategoryPrice, error) {
	var out []*entity.CategoryPrice
	err := r.s.do(ctx, r.inTx, op, func(st *state) error {
		out = make([]*entity.CategoryPrice, 0)
		for _, p := range st.prices {
			if match(p) {
				out = append(out, withName(st, p))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.CategoryName != b.CategoryName {
				return a.CategoryName < b.CategoryName
			}
			if a.CategoryID != b.CategoryID {
				return a.CategoryID < b.CategoryID
			}
			if a.DriverType != b.DriverType {
				return a.DriverType < b.DriverType
			}
			return a.EffectiveDate.After(b.EffectiveDate)
		})
		return nil
	})
	return out, err
}

func (r *priceRepo) PricedCategoryIDs(ctx context.Context, warehouseID string) ([]string, error) {
	var out []string
	err := r.s.do(ctx, r.inTx, "prices.priced_categories", func(st *state) error {
		seen := make(map[string]struct{})
		out = make([]string, 0)
		for _, p := range st.prices {
			if warehouseID != "" && p.WarehouseID != warehouseID {
				continue
			}
			if _, ok := seen[p.CategoryID]; ok {
				continue
			}
			seen[p.CategoryID] = struct{}{}
			out = append(out, p.CategoryID)
		}
		sort.Strings(out)
		return nil
	})
	return out, err
}

func (r *priceRepo) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, r.inTx, "prices.delete", func(st *state) error {
		if _, ok := st.prices[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.prices, id)
		return nil
	})
}

func (r *priceRepo) DeleteByCategory(ctx context.Context, categoryID string) error {
	return r.s.do(ctx, r.inTx, "prices.delete_by_category", func(st *state) error {
		for id, p := range st.prices {
			if p.CategoryID == categoryID {
				delete(st.prices, id)
			}
		}
		return nil
	})
}

func withName(st *state, p *entity.CategoryPrice) *entity.CategoryPrice {
	cp := *p
	if c, ok := st.categories[p.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}
