package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

type recordRepo struct {
	s    *Store
	inTx bool
}

func (r *recordRepo) Create(ctx context.Context, rec *entity.PieceWorkRecord) error {
	return r.s.do(ctx, r.inTx, "records.create", func(st *state) error {
		if _, ok := st.records[rec.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *rec
		cp.WorkDate = entity.TruncateDate(cp.WorkDate)
		st.records[rec.ID] = &cp
		st.touch(rec.ID)
		return nil
	})
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (*entity.PieceWorkRecord, error) {
	return r.get(ctx, "records.get", id)
}

// GetForUpdate no necesita bloqueo adicional: las transacciones en memoria ya son exclusivas.
func (r *recordRepo) GetForUpdate(ctx context.Context, id string) (*entity.PieceWorkRecord, error) {
	return r.get(ctx, "records.get_for_update", id)
}

func (r *recordRepo) get(ctx context.Context, op, id string) (*entity.PieceWorkRecord, error) {
	var out *entity.PieceWorkRecord
	err := r.s.do(ctx, r.inTx, op, func(st *state) error {
		if rec, ok := st.records[id]; ok {
			cp := *rec
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *recordRepo) FindSameDay(ctx context.Context, userID, warehouseID, categoryID string, workDate time.Time) (*entity.PieceWorkRecord, error) {
	var out *entity.PieceWorkRecord
	err := r.s.do(ctx, r.inTx, "records.find_same_day", func(st *state) error {
		for _, rec := range sortedRecords(st) {
			if rec.SameContext(userID, warehouseID, categoryID, workDate) {
				cp := *rec
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *recordRepo) Update(ctx context.Context, rec *entity.PieceWorkRecord, expectedVersion int64) error {
	return r.s.do(ctx, r.inTx, "records.update", func(st *state) error {
		cur, ok := st.records[rec.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != expectedVersion {
			return domain.ErrConflict
		}
		cp := *rec
		cp.WorkDate = entity.TruncateDate(cp.WorkDate)
		cp.CreatedAt = cur.CreatedAt
		st.records[rec.ID] = &cp
		return nil
	})
}

func (r *recordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]*entity.PieceWorkRecord, error) {
	var out []*entity.PieceWorkRecord
	err := r.s.do(ctx, r.inTx, "records.list", func(st *state) error {
		out = make([]*entity.PieceWorkRecord, 0)
		for _, rec := range sortedRecords(st) {
			if filter.UserID != "" && rec.UserID != filter.UserID {
				continue
			}
			if filter.WarehouseID != "" && rec.WarehouseID != filter.WarehouseID {
				continue
			}
			if filter.CategoryID != "" && rec.CategoryID != filter.CategoryID {
				continue
			}
			if !filter.Range.Contains(rec.WorkDate) {
				continue
			}
			cp := *rec
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *recordRepo) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, r.inTx, "records.delete", func(st *state) error {
		if _, ok := st.records[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.records, id)
		return nil
	})
}

// sortedRecords work_date DESC, created_at DESC, orden de inserción DESC.
func sortedRecords(st *state) []*entity.PieceWorkRecord {
	out := make([]*entity.PieceWorkRecord, 0, len(st.records))
	for _, rec := range st.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.WorkDate.Equal(b.WorkDate) {
			return a.WorkDate.After(b.WorkDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return st.order[a.ID] > st.order[b.ID]
	})
	return out
}
