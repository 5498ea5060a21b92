package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

func TestRecordWhere_SinFiltros(t *testing.T) {
	where, args := recordWhere(repository.RecordFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestRecordWhere_TodosLosFiltros(t *testing.T) {
	from := time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	where, args := recordWhere(repository.RecordFilter{
		UserID:      "u-1",
		WarehouseID: "wh-1",
		CategoryID:  "cat-1",
		Range:       entity.DateRange{From: &from, To: &to},
	})

	assert.Equal(t,
		" WHERE user_id = $1 AND warehouse_id = $2 AND category_id = $3 AND work_date >= $4 AND work_date <= $5",
		where)
	assert.Len(t, args, 5)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), args[3])
}

// Solo fecha de inicio: sin límite superior.
func TestRecordWhere_SoloDesde(t *testing.T) {
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	where, args := recordWhere(repository.RecordFilter{UserID: "u-1", Range: entity.DateRange{From: &from}})
	assert.Equal(t, " WHERE user_id = $1 AND work_date >= $2", where)
	assert.Len(t, args, 2)
}

func TestWrapErr_Clasificacion(t *testing.T) {
	timeout := wrapErr("op", fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, errors.Is(timeout, domain.ErrTransient))

	conn := wrapErr("op", &pgconn.PgError{Code: "08006"})
	assert.True(t, errors.Is(conn, domain.ErrTransient))

	serial := wrapErr("op", &pgconn.PgError{Code: "40001"})
	assert.True(t, errors.Is(serial, domain.ErrConflict))

	other := wrapErr("op", &pgconn.PgError{Code: "23503"})
	assert.False(t, errors.Is(other, domain.ErrTransient))
	assert.False(t, errors.Is(other, domain.ErrConflict))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}
