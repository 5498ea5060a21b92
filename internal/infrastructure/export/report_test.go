package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

func sampleData() *apppw.ReportData {
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	rec := &entity.PieceWorkRecord{
		ID:               "r-1",
		UserID:           "u-1",
		WarehouseID:      "wh-1",
		CategoryID:       "cat-1",
		WorkDate:         from,
		Quantity:         3,
		UnitPrice:        decimal.RequireFromString("10.00"),
		UpstairsPrice:    decimal.Zero,
		SortingUnitPrice: decimal.Zero,
		BaseAmount:       decimal.RequireFromString("30.00"),
		UpstairsAmount:   decimal.Zero,
		SortingAmount:    decimal.Zero,
		TotalAmount:      decimal.RequireFromString("30.00"),
	}
	orphan := *rec
	orphan.ID, orphan.CategoryID, orphan.UserID = "r-2", "cat-gone", "u-2"
	return &apppw.ReportData{
		WarehouseID:   "wh-1",
		Range:         entity.DateRange{From: &from, To: &to},
		Records:       []*entity.PieceWorkRecord{rec, &orphan},
		CategoryNames: map[string]string{"cat-1": "Pequeño"},
		Stats: &entity.Stats{
			TotalOrders:   2,
			TotalQuantity: 6,
			TotalAmount:   decimal.RequireFromString("60.00"),
			ByCategory: []entity.CategoryStats{
				{CategoryID: "cat-1", CategoryName: "Pequeño", Quantity: 3, Amount: decimal.RequireFromString("30.00")},
				{CategoryID: "cat-gone", CategoryName: entity.UnknownCategoryName, Quantity: 3, Amount: decimal.RequireFromString("30.00")},
			},
		},
		Drivers: []entity.DriverSummary{
			{UserID: "u-1", TotalQuantity: 3, TotalAmount: decimal.RequireFromString("30.00"), RecordCount: 1},
			{UserID: "u-2", TotalQuantity: 3, TotalAmount: decimal.RequireFromString("30.00"), RecordCount: 1},
		},
		GeneratedAt: time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestExcelRenderer_Hojas(t *testing.T) {
	r := NewExcelRenderer()
	assert.Equal(t, "xlsx", r.Format())

	content, err := r.Render(context.Background(), sampleData())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "fecha", rows[0][0])
	assert.Equal(t, "2024-07-01", rows[1][0])
	assert.Equal(t, "Pequeño", rows[1][3])
	assert.Equal(t, entity.UnknownCategoryName, rows[2][3])

	cats, err := f.GetRows(SheetCategories)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, "TOTAL", cats[3][1])
	assert.Equal(t, "6", cats[3][2])

	drivers, err := f.GetRows(SheetDrivers)
	require.NoError(t, err)
	require.Len(t, drivers, 3)
	assert.Equal(t, "u-1", drivers[1][0])
}

func TestExcelRenderer_SinDatos(t *testing.T) {
	content, err := NewExcelRenderer().Render(context.Background(), &apppw.ReportData{WarehouseID: "wh-1"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPDFRenderer_Genera(t *testing.T) {
	r := NewPDFRenderer()
	assert.Equal(t, "application/pdf", r.ContentType())

	content, err := r.Render(context.Background(), sampleData())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestPDFRenderer_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDFRenderer().Render(ctx, sampleData())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0,00", formatMoney(decimal.Zero))
	assert.Equal(t, "999,50", formatMoney(decimal.RequireFromString("999.5")))
	assert.Equal(t, "1.234.567,89", formatMoney(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-1.000,00", formatMoney(decimal.RequireFromString("-1000")))
}
