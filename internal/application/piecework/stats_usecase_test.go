package piecework_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/infrastructure/cache"
)

func (f *fixture) record(t *testing.T, id, user, cat string, qty int64, amount, date string) {
	t.Helper()
	err := f.store.Repos.Records.Create(context.Background(), &entity.PieceWorkRecord{
		ID:          id,
		UserID:      user,
		WarehouseID: "wh-1",
		CategoryID:  cat,
		WorkDate:    day(date),
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(amount).Div(decimal.NewFromInt(qty)),
		BaseAmount:  decimal.RequireFromString(amount),
		TotalAmount: decimal.RequireFromString(amount),
		Version:     1,
		CreatedAt:   fixedNow,
	})
	require.NoError(t, err)
}

func scenarioFixture(t *testing.T) *fixture {
	f := newFixture()
	f.category(t, "cat-1", "Paquete")
	f.category(t, "cat-2", "Voluminoso")
	f.price(t, "wh-1", "cat-1", entity.DriverTypeDriverOnly, "10", "2024-01-01")
	f.price(t, "wh-1", "cat-2", entity.DriverTypeDriverOnly, "10", "2024-01-01")
	f.record(t, "r1", "u-1", "cat-1", 100, "1000", "2024-07-01")
	f.record(t, "r2", "u-1", "cat-1", 50, "500", "2024-07-02")
	f.record(t, "r3", "u-2", "cat-2", 80, "800", "2024-07-02")
	return f
}

func TestStats_Escenario(t *testing.T) {
	f := scenarioFixture(t)
	uc := apppw.NewStatsUseCase(f.store.Repos, f.opts)

	stats, err := uc.Compute(context.Background(), "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, int64(230), stats.TotalQuantity)
	decEq(t, "2300", stats.TotalAmount)
	assert.Len(t, stats.ByCategory, 2)
}

func TestStats_PorUsuarioYRango(t *testing.T) {
	f := scenarioFixture(t)
	uc := apppw.NewStatsUseCase(f.store.Repos, f.opts)

	stats, err := uc.Compute(context.Background(), "u-1", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	require.Len(t, stats.ByCategory, 1)
	assert.Equal(t, "Paquete", stats.ByCategory[0].CategoryName)

	to := day("2024-07-01")
	stats, err = uc.Compute(context.Background(), "", "wh-1", entity.DateRange{To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, int64(100), stats.TotalQuantity)
}

func TestStats_BodegaSinPrecios(t *testing.T) {
	f := newFixture()
	f.category(t, "cat-1", "Paquete")
	f.record(t, "r1", "u-1", "cat-1", 100, "1000", "2024-07-01")
	uc := apppw.NewStatsUseCase(f.store.Repos, f.opts)

	stats, err := uc.Compute(context.Background(), "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.True(t, stats.TotalAmount.IsZero())
	assert.NotNil(t, stats.ByCategory)
	assert.Empty(t, stats.ByCategory)
}

func TestStats_CategoriaBorradaEsUnknown(t *testing.T) {
	f := scenarioFixture(t)
	require.NoError(t, f.store.Repos.Categories.Delete(context.Background(), "cat-2"))
	uc := apppw.NewStatsUseCase(f.store.Repos, f.opts)

	stats, err := uc.Compute(context.Background(), "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	require.Len(t, stats.ByCategory, 2)
	names := map[string]string{}
	for _, c := range stats.ByCategory {
		names[c.CategoryID] = c.CategoryName
	}
	assert.Equal(t, "Paquete", names["cat-1"])
	assert.Equal(t, entity.UnknownCategoryName, names["cat-2"])
}

func TestStats_BodegaRequerida(t *testing.T) {
	f := newFixture()
	_, err := apppw.NewStatsUseCase(f.store.Repos, f.opts).Compute(context.Background(), "u-1", "", entity.DateRange{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Con Redis: un hit no recalcula y una escritura por los casos de uso invalida la caché.
func TestStats_CacheRedis(t *testing.T) {
	f := scenarioFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.opts.Cache = cache.NewStatsCache(client, time.Minute)

	stats := apppw.NewStatsUseCase(f.store.Repos, f.opts)
	accrual := apppw.NewAccrualUseCase(f.store, f.opts)
	ctx := context.Background()

	first, err := stats.Compute(ctx, "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalOrders)

	// Escritura directa al repositorio: no invalida, la caché sigue respondiendo.
	f.record(t, "r4", "u-3", "cat-1", 1, "10", "2024-07-03")
	cached, err := stats.Compute(ctx, "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, cached.TotalOrders)
	decEq(t, "2300", cached.TotalAmount)
	assert.Equal(t, 1, f.metrics.hits)

	// Un envío por el caso de uso incrementa la versión.
	_, err = accrual.SubmitNew(ctx, sctx("u-3", "wh-1", "2024-07-03"), []entity.PieceWorkItem{item("cat-2", 2, "5")})
	require.NoError(t, err)
	fresh, err := stats.Compute(ctx, "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.TotalOrders)
	decEq(t, "2320", fresh.TotalAmount)
}

// Si Redis no responde las estadísticas se calculan igual.
func TestStats_CacheCaidaDegrada(t *testing.T) {
	f := scenarioFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	f.opts.Cache = cache.NewStatsCache(client, time.Minute)
	mr.Close()

	stats, err := apppw.NewStatsUseCase(f.store.Repos, f.opts).Compute(context.Background(), "", "wh-1", entity.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
}
