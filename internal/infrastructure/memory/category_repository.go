package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

type categoryRepo struct {
	s    *Store
	inTx bool
}

func (r *categoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.s.do(ctx, r.inTx, "categories.create", func(st *state) error {
		if _, ok := st.categories[c.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *c
		st.categories[c.ID] = &cp
		st.touch(c.ID)
		return nil
	})
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.do(ctx, r.inTx, "categories.get", func(st *state) error {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.s.do(ctx, r.inTx, "categories.update", func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *categoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.do(ctx, r.inTx, "categories.list", func(st *state) error {
		out = make([]*entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			if activeOnly && !c.IsActive {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return st.order[out[i].ID] < st.order[out[j].ID]
		})
		return nil
	})
	return out, err
}

func (r *categoryRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.do(ctx, r.inTx, "categories.list_by_ids", func(st *state) error {
		out = make([]*entity.Category, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if c, ok := st.categories[id]; ok {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, r.inTx, "categories.delete", func(st *state) error {
		delete(st.categories, id)
		return nil
	})
}

func (r *categoryRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	err := r.s.do(ctx, r.inTx, "categories.delete_by_ids", func(st *state) error {
		for _, id := range ids {
			if _, ok := st.categories[id]; ok {
				delete(st.categories, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
