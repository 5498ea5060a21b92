package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

var _ apppw.ReportRenderer = (*ExcelRenderer)(nil)

// Hojas del libro exportado.
const (
	SheetRecords    = "Registros"
	SheetCategories = "Categorias"
	SheetDrivers    = "Conductores"
)

// ExcelRenderer genera el reporte a destajo como libro xlsx.
type ExcelRenderer struct{}

// NewExcelRenderer construye el renderer.
func NewExcelRenderer() *ExcelRenderer { return &ExcelRenderer{} }

func (ExcelRenderer) Format() string { return "xlsx" }

func (ExcelRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render escribe una hoja de registros, una de totales por categoría y una por conductor.
func (r ExcelRenderer) Render(ctx context.Context, data *apppw.ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetRecords); err != nil {
		return nil, fmt.Errorf("xlsx: hoja %s: %w", SheetRecords, err)
	}
	for _, name := range []string{SheetCategories, SheetDrivers} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx: hoja %s: %w", name, err)
		}
	}

	header := []any{
		"fecha", "conductor", "bodega", "categoria", "cantidad", "precio_unitario",
		"subida", "precio_subida", "clasificacion", "precio_clasificacion",
		"base", "importe_subida", "importe_clasificacion", "total", "notas",
	}
	rows := make([][]any, 0, len(data.Records))
	for _, rec := range data.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, []any{
			rec.WorkDate.Format(entity.DateLayout),
			rec.UserID,
			rec.WarehouseID,
			categoryName(data.CategoryNames, rec.CategoryID),
			rec.Quantity,
			money(rec.UnitPrice),
			yesNo(rec.NeedUpstairs),
			money(rec.UpstairsPrice),
			rec.SortingQuantity,
			money(rec.SortingUnitPrice),
			money(rec.BaseAmount),
			money(rec.UpstairsAmount),
			money(rec.SortingAmount),
			money(rec.TotalAmount),
			rec.Notes,
		})
	}
	if err := writeSheet(f, SheetRecords, header, rows); err != nil {
		return nil, err
	}

	catRows := make([][]any, 0)
	if data.Stats != nil {
		for _, c := range data.Stats.ByCategory {
			catRows = append(catRows, []any{c.CategoryID, c.CategoryName, c.Quantity, money(c.Amount)})
		}
		catRows = append(catRows, []any{"", "TOTAL", data.Stats.TotalQuantity, money(data.Stats.TotalAmount)})
	}
	if err := writeSheet(f, SheetCategories, []any{"category_id", "categoria", "cantidad", "importe"}, catRows); err != nil {
		return nil, err
	}

	drvRows := make([][]any, 0, len(data.Drivers))
	for _, d := range data.Drivers {
		drvRows = append(drvRows, []any{d.UserID, d.RecordCount, d.TotalQuantity, money(d.TotalAmount)})
	}
	if err := writeSheet(f, SheetDrivers, []any{"conductor", "registros", "cantidad", "importe"}, drvRows); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: encabezado %s: %w", sheet, err)
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: celda %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

// money valor para celda numérica; el cálculo exacto ya ocurrió en el dominio.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func categoryName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return entity.UnknownCategoryName
}

func yesNo(b bool) string {
	if b {
		return "si"
	}
	return "no"
}
