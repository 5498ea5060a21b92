// Package export implementa los formatos de exportación del reporte a destajo.
//
// Layout del PDF (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + bodega  │  rango + fecha de generación     │
//	│  TOTALES: pedidos / cantidad / importe                       │
//	│  TABLA: categoría | cantidad | importe                       │
//	│  TABLA: conductor | registros | cantidad | importe           │
//	│  TABLA: fecha | conductor | categoría | cant. | total        │
//	└─────────────────────────────────────────────────────────────┘
package export

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

var _ apppw.ReportRenderer = (*PDFRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PDFRenderer genera el reporte a destajo con Maroto v2.
type PDFRenderer struct{}

// NewPDFRenderer construye el renderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

func (PDFRenderer) Format() string      { return "pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Render genera el PDF y devuelve sus bytes.
func (PDFRenderer) Render(ctx context.Context, data *apppw.ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de destajo "+data.WarehouseID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalsRow(data.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow("TOTALES POR CATEGORÍA"))
	m.AddRows(tableHeader([]string{"Categoría", "Cantidad", "Importe"}, []int{6, 3, 3}))
	if data.Stats != nil {
		for _, c := range data.Stats.ByCategory {
			m.AddRows(tableRow([]string{c.CategoryName, fmt.Sprint(c.Quantity), "$" + formatMoney(c.Amount)}, []int{6, 3, 3}))
		}
	}

	m.AddRows(row.New(4))
	m.AddRows(sectionRow("RESUMEN POR CONDUCTOR"))
	m.AddRows(tableHeader([]string{"Conductor", "Registros", "Cantidad", "Importe"}, []int{5, 2, 2, 3}))
	for _, d := range data.Drivers {
		m.AddRows(tableRow([]string{
			d.UserID, fmt.Sprint(d.RecordCount), fmt.Sprint(d.TotalQuantity), "$" + formatMoney(d.TotalAmount),
		}, []int{5, 2, 2, 3}))
	}

	m.AddRows(row.New(4))
	m.AddRows(sectionRow("DETALLE DE REGISTROS"))
	widths := []int{2, 3, 3, 1, 3}
	m.AddRows(tableHeader([]string{"Fecha", "Conductor", "Categoría", "Cant.", "Total"}, widths))
	for _, rec := range data.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddRows(tableRow([]string{
			rec.WorkDate.Format("02/01/2006"),
			rec.UserID,
			categoryName(data.CategoryNames, rec.CategoryID),
			fmt.Sprint(rec.Quantity),
			"$" + formatMoney(rec.TotalAmount),
		}, widths))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(data *apppw.ReportData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REPORTE DE DESTAJO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Bodega: "+data.WarehouseID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Periodo: "+rangeLabel(data.Range), props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func totalsRow(stats *entity.Stats) core.Row {
	if stats == nil {
		stats = entity.EmptyStats()
	}
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("Pedidos", fmt.Sprint(stats.TotalOrders)),
		cell("Cantidad", fmt.Sprint(stats.TotalQuantity)),
		cell("Importe", "$"+formatMoney(stats.TotalAmount)),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func tableHeader(labels []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(widths[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: columnAlign(i), Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func tableRow(values []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, col.New(widths[i]).Add(text.New(v, props.Text{
			Size: 8, Align: columnAlign(i), Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(5).Add(cols...)
}

// La primera columna es texto; el resto son cifras.
func columnAlign(i int) align.Type {
	if i == 0 {
		return align.Left
	}
	return align.Right
}

func rangeLabel(rng entity.DateRange) string {
	from, to := "inicio", "hoy"
	if rng.From != nil {
		from = rng.From.Format("02/01/2006")
	}
	if rng.To != nil {
		to = rng.To.Format("02/01/2006")
	}
	return from + " a " + to
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
