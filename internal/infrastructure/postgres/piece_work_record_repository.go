package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

var _ repository.PieceWorkRecordRepository = (*PieceWorkRecordRepo)(nil)

const recordColumns = `id, user_id, warehouse_id, category_id, work_date, quantity, unit_price,
	need_upstairs, upstairs_price, need_sorting, sorting_quantity, sorting_unit_price,
	base_amount, upstairs_amount, sorting_amount, total_amount, notes, version, created_at, updated_at`

const recordOrder = ` ORDER BY work_date DESC, created_at DESC, id DESC`

// PieceWorkRecordRepo implementación de PieceWorkRecordRepository sobre PostgreSQL.
type PieceWorkRecordRepo struct {
	q Querier
}

// NewPieceWorkRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPieceWorkRecordRepository(q Querier) *PieceWorkRecordRepo {
	return &PieceWorkRecordRepo{q: q}
}

func (r *PieceWorkRecordRepo) Create(ctx context.Context, rec *entity.PieceWorkRecord) error {
	query := `
		INSERT INTO piece_work_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.UserID, rec.WarehouseID, rec.CategoryID, entity.TruncateDate(rec.WorkDate),
		rec.Quantity, rec.UnitPrice, rec.NeedUpstairs, rec.UpstairsPrice, rec.NeedSorting,
		rec.SortingQuantity, rec.SortingUnitPrice, rec.BaseAmount, rec.UpstairsAmount,
		rec.SortingAmount, rec.TotalAmount, rec.Notes, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert piece work record", err)
	}
	return nil
}

func (r *PieceWorkRecordRepo) GetByID(ctx context.Context, id string) (*entity.PieceWorkRecord, error) {
	return r.getOne(ctx, "get piece work record",
		`SELECT `+recordColumns+` FROM piece_work_records WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *PieceWorkRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.PieceWorkRecord, error) {
	return r.getOne(ctx, "get piece work record for update",
		`SELECT `+recordColumns+` FROM piece_work_records WHERE id = $1 FOR UPDATE`, id)
}

func (r *PieceWorkRecordRepo) FindSameDay(ctx context.Context, userID, warehouseID, categoryID string, workDate time.Time) (*entity.PieceWorkRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM piece_work_records
		WHERE user_id = $1 AND warehouse_id = $2 AND category_id = $3 AND work_date = $4` +
		` ORDER BY created_at DESC, id DESC LIMIT 1`
	return r.getOne(ctx, "find same day record", query, userID, warehouseID, categoryID, entity.TruncateDate(workDate))
}

// Update persiste el registro solo si la versión almacenada es expectedVersion.
func (r *PieceWorkRecordRepo) Update(ctx context.Context, rec *entity.PieceWorkRecord, expectedVersion int64) error {
	query := `
		UPDATE piece_work_records SET
			category_id = $3, quantity = $4, unit_price = $5, need_upstairs = $6, upstairs_price = $7,
			need_sorting = $8, sorting_quantity = $9, sorting_unit_price = $10, base_amount = $11,
			upstairs_amount = $12, sorting_amount = $13, total_amount = $14, notes = $15,
			version = $16, updated_at = $17
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		rec.ID, expectedVersion, rec.CategoryID, rec.Quantity, rec.UnitPrice, rec.NeedUpstairs,
		rec.UpstairsPrice, rec.NeedSorting, rec.SortingQuantity, rec.SortingUnitPrice,
		rec.BaseAmount, rec.UpstairsAmount, rec.SortingAmount, rec.TotalAmount, rec.Notes,
		rec.Version, rec.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update piece work record", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM piece_work_records WHERE id = $1)`, rec.ID).Scan(&exists); err != nil {
		return wrapErr("update piece work record", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *PieceWorkRecordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]*entity.PieceWorkRecord, error) {
	where, args := recordWhere(filter)
	query := `SELECT ` + recordColumns + ` FROM piece_work_records` + where + recordOrder

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list piece work records", err)
	}
	defer rows.Close()
	out := make([]*entity.PieceWorkRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapErr("list piece work records", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list piece work records", err)
	}
	return out, nil
}

func (r *PieceWorkRecordRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM piece_work_records WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete piece work record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PieceWorkRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.PieceWorkRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return rec, nil
}

// recordWhere arma el WHERE de List; los campos vacíos y los límites nil no filtran.
func recordWhere(f repository.RecordFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.Range.From != nil {
		add("work_date >= $%d", entity.TruncateDate(*f.Range.From))
	}
	if f.Range.To != nil {
		add("work_date <= $%d", entity.TruncateDate(*f.Range.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRecord(row pgx.Row) (*entity.PieceWorkRecord, error) {
	var rec entity.PieceWorkRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.WarehouseID, &rec.CategoryID, &rec.WorkDate, &rec.Quantity,
		&rec.UnitPrice, &rec.NeedUpstairs, &rec.UpstairsPrice, &rec.NeedSorting,
		&rec.SortingQuantity, &rec.SortingUnitPrice, &rec.BaseAmount, &rec.UpstairsAmount,
		&rec.SortingAmount, &rec.TotalAmount, &rec.Notes, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.WorkDate = entity.TruncateDate(rec.WorkDate)
	return &rec, nil
}
