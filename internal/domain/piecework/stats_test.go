package piecework_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
)

func rec(id, user, wh, cat string, qty int64, amount string) *entity.PieceWorkRecord {
	return &entity.PieceWorkRecord{
		ID:          id,
		UserID:      user,
		WarehouseID: wh,
		CategoryID:  cat,
		Quantity:    qty,
		TotalAmount: decimal.RequireFromString(amount),
	}
}

func scenario() []*entity.PieceWorkRecord {
	return []*entity.PieceWorkRecord{
		rec("r1", "u-1", "wh-1", "cat-1", 100, "1000"),
		rec("r2", "u-1", "wh-1", "cat-1", 50, "500"),
		rec("r3", "u-2", "wh-1", "cat-2", 80, "800"),
	}
}

func TestAggregate_Escenario(t *testing.T) {
	names := map[string]string{"cat-1": "Paquete", "cat-2": "Voluminoso"}
	stats := piecework.Aggregate(scenario(), []string{"cat-1", "cat-2"}, names)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, int64(230), stats.TotalQuantity)
	decEq(t, "2300", stats.TotalAmount)
	require.Len(t, stats.ByCategory, 2)

	assert.Equal(t, "cat-1", stats.ByCategory[0].CategoryID)
	assert.Equal(t, "Paquete", stats.ByCategory[0].CategoryName)
	assert.Equal(t, int64(150), stats.ByCategory[0].Quantity)
	decEq(t, "1500", stats.ByCategory[0].Amount)
	assert.Equal(t, "cat-2", stats.ByCategory[1].CategoryID)
}

func TestAggregate_SinPreciosDevuelveCero(t *testing.T) {
	stats := piecework.Aggregate(scenario(), nil, nil)

	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, int64(0), stats.TotalQuantity)
	assert.True(t, stats.TotalAmount.IsZero())
	assert.NotNil(t, stats.ByCategory)
	assert.Empty(t, stats.ByCategory)
}

func TestAggregate_CategoriaDesconocida(t *testing.T) {
	stats := piecework.Aggregate(scenario(), []string{"cat-1"}, map[string]string{"cat-1": "Paquete"})
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, entity.UnknownCategoryName, stats.ByCategory[1].CategoryName)
}

func TestCategoryIDs_SinRepetir(t *testing.T) {
	assert.Equal(t, []string{"cat-1", "cat-2"}, piecework.CategoryIDs(scenario()))
	assert.Empty(t, piecework.CategoryIDs(nil))
}

func TestSummarizeDrivers_OrdenYBodegas(t *testing.T) {
	records := append(scenario(),
		rec("r4", "u-2", "wh-2", "cat-2", 10, "900"),
		rec("r5", "u-3", "wh-1", "cat-1", 1, "1500"),
	)

	desc := piecework.SummarizeDrivers(records, true)
	require.Len(t, desc, 3)
	// u-2 = 1700, u-1 = 1500, u-3 = 1500 (empate por id)
	assert.Equal(t, "u-2", desc[0].UserID)
	assert.Equal(t, "u-1", desc[1].UserID)
	assert.Equal(t, "u-3", desc[2].UserID)
	assert.Equal(t, []string{"wh-1", "wh-2"}, desc[0].WarehouseIDs)
	assert.Equal(t, 2, desc[0].RecordCount)
	assert.Equal(t, int64(90), desc[0].TotalQuantity)

	asc := piecework.SummarizeDrivers(records, false)
	assert.Equal(t, "u-1", asc[0].UserID)
	assert.Equal(t, "u-3", asc[1].UserID)
	assert.Equal(t, "u-2", asc[2].UserID)
}
