package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
	"github.com/jhoicas/piecework-api/internal/infrastructure/memory"
)

func date(s string) time.Time {
	t, _ := entity.ParseDate(s)
	return t
}

func record(id, user, day string, created time.Time) *entity.PieceWorkRecord {
	return &entity.PieceWorkRecord{
		ID:          id,
		UserID:      user,
		WarehouseID: "wh-1",
		CategoryID:  "cat-1",
		WorkDate:    date(day),
		Quantity:    1,
		TotalAmount: decimal.NewFromInt(1),
		Version:     1,
		CreatedAt:   created,
	}
}

func TestRun_RollbackRestauraEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos repository.Repositories) error {
		require.NoError(t, repos.Categories.Create(ctx, &entity.Category{ID: "cat-1", Name: "A"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repositories().Categories.GetByID(ctx, "cat-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailOn_FallaEnLaLlamadaIndicada(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")
	s.FailOn("records.create", 2, boom)

	repos := s.Repositories()
	now := time.Now()
	require.NoError(t, repos.Records.Create(ctx, record("r1", "u-1", "2024-01-01", now)))
	assert.ErrorIs(t, repos.Records.Create(ctx, record("r2", "u-1", "2024-01-01", now)), boom)
	require.NoError(t, repos.Records.Create(ctx, record("r3", "u-1", "2024-01-01", now)))
}

func TestRecords_UpdateConVersion(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	r := record("r1", "u-1", "2024-01-01", time.Now())
	require.NoError(t, repos.Records.Create(ctx, r))

	r.Quantity = 5
	r.Version = 2
	require.NoError(t, repos.Records.Update(ctx, r, 1))
	assert.ErrorIs(t, repos.Records.Update(ctx, r, 1), domain.ErrConflict)

	missing := record("nope", "u-1", "2024-01-01", time.Now())
	assert.ErrorIs(t, repos.Records.Update(ctx, missing, 1), domain.ErrNotFound)
}

func TestRecords_DeleteInexistente(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Records.Create(ctx, record("r1", "u-1", "2024-01-01", time.Now())))

	require.NoError(t, repos.Records.Delete(ctx, "r1"))
	assert.ErrorIs(t, repos.Records.Delete(ctx, "r1"), domain.ErrNotFound)
	assert.ErrorIs(t, repos.Prices.Delete(ctx, "nope"), domain.ErrNotFound)
}

func TestRecords_ListOrdenYRango(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	t0 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Records.Create(ctx, record("a", "u-1", "2024-01-01", t0)))
	require.NoError(t, repos.Records.Create(ctx, record("b", "u-1", "2024-01-03", t0)))
	require.NoError(t, repos.Records.Create(ctx, record("c", "u-1", "2024-01-03", t0.Add(time.Hour))))
	require.NoError(t, repos.Records.Create(ctx, record("d", "u-2", "2024-01-02", t0)))

	all, err := repos.Records.List(ctx, repository.RecordFilter{UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	from := date("2024-01-02")
	since, err := repos.Records.List(ctx, repository.RecordFilter{UserID: "u-1", Range: entity.DateRange{From: &from}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(since))

	to := date("2024-01-02")
	until, err := repos.Records.List(ctx, repository.RecordFilter{Range: entity.DateRange{To: &to}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a"}, ids(until))
}

func TestRecords_FindSameDay(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Records.Create(ctx, record("a", "u-1", "2024-01-01", time.Now())))

	got, err := repos.Records.FindSameDay(ctx, "u-1", "wh-1", "cat-1", time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)

	none, err := repos.Records.FindSameDay(ctx, "u-1", "wh-1", "cat-1", date("2024-01-02"))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPrices_UpsertReemplazaPorLlave(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Categories.Create(ctx, &entity.Category{ID: "cat-1", Name: "Paquete"}))

	first := &entity.CategoryPrice{ID: "p1", WarehouseID: "wh-1", CategoryID: "cat-1",
		DriverType: entity.DriverTypeDriverOnly, Price: decimal.NewFromInt(1), EffectiveDate: date("2024-01-01")}
	require.NoError(t, repos.Prices.Upsert(ctx, first))

	second := &entity.CategoryPrice{ID: "p2", WarehouseID: "wh-1", CategoryID: "cat-1",
		DriverType: entity.DriverTypeDriverOnly, Price: decimal.NewFromInt(2), EffectiveDate: date("2024-01-01")}
	require.NoError(t, repos.Prices.Upsert(ctx, second))
	assert.Equal(t, "p1", second.ID)

	list, err := repos.Prices.ListByWarehouse(ctx, "wh-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Price.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "Paquete", list[0].CategoryName)

	priced, err := repos.Prices.PricedCategoryIDs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, priced)
	none, err := repos.Prices.PricedCategoryIDs(ctx, "wh-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.NewStore().Repositories().Categories.List(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func ids(records []*entity.PieceWorkRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
