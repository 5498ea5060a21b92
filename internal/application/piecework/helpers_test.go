package piecework_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	mu          sync.Mutex
	submissions map[string]int
	conflicts   int
	hits        int
	misses      int
	storeErrors int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{submissions: make(map[string]int)}
}

func (m *fakeMetrics) ObserveSubmission(mode string, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[mode] += items
}

func (m *fakeMetrics) IncMergeConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

func (m *fakeMetrics) ObserveStats(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *fakeMetrics) IncStoreError(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors++
}

type fakeCache struct {
	mu    sync.Mutex
	bumps int
}

func (c *fakeCache) BuildKey(context.Context, ...string) (string, error) { return "k", nil }

func (c *fakeCache) FetchJSON(ctx context.Context, _ string, dest any, loader func(context.Context) (any, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	*dest.(*entity.Stats) = *v.(*entity.Stats)
	return nil
}

func (c *fakeCache) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumps++
	return nil
}

type fixture struct {
	mem     *memory.Store
	store   apppw.Store
	opts    apppw.Options
	metrics *fakeMetrics
	cache   *fakeCache
}

func newFixture() *fixture {
	mem := memory.NewStore()
	f := &fixture{
		mem:     mem,
		store:   apppw.Store{Repos: mem.Repositories(), Tx: mem},
		metrics: newFakeMetrics(),
		cache:   &fakeCache{},
	}
	f.opts = apppw.Options{
		Timeout:      time.Second,
		MergeRetries: 3,
		Cache:        f.cache,
		Metrics:      f.metrics,
		Logger:       zerolog.Nop(),
		Now:          func() time.Time { return fixedNow },
	}
	return f
}

func (f *fixture) category(t *testing.T, id, name string) {
	t.Helper()
	err := f.store.Repos.Categories.Create(context.Background(), &entity.Category{
		ID: id, Name: name, IsActive: true, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	})
	require.NoError(t, err)
}

func (f *fixture) price(t *testing.T, wh, cat, driverType, price, effective string) {
	t.Helper()
	err := f.store.Repos.Prices.Upsert(context.Background(), &entity.CategoryPrice{
		ID:            wh + "-" + cat + "-" + driverType + "-" + effective,
		WarehouseID:   wh,
		CategoryID:    cat,
		DriverType:    driverType,
		Price:         decimal.RequireFromString(price),
		EffectiveDate: day(effective),
	})
	require.NoError(t, err)
}

func day(s string) time.Time {
	t, err := entity.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func i64(v int64) *int64 { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func item(cat string, qty int64, price string) entity.PieceWorkItem {
	return entity.PieceWorkItem{CategoryID: cat, Quantity: i64(qty), UnitPrice: dec(price)}
}

func sctx(user, wh, date string) entity.SubmissionContext {
	return entity.SubmissionContext{UserID: user, WarehouseID: wh, WorkDate: day(date)}
}

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}
