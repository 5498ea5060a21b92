package piecework

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
	"github.com/jhoicas/piecework-api/internal/domain/piecework"
	"github.com/jhoicas/piecework-api/internal/domain/repository"
)

// ReportUseCase reportes de gerente: resumen por conductor y exportación a archivo.
type ReportUseCase struct {
	repos     repository.Repositories
	stats     *StatsUseCase
	renderers map[string]ReportRenderer
	opts      Options
}

// NewReportUseCase construye el caso de uso con los formatos de exportación disponibles.
func NewReportUseCase(repos repository.Repositories, stats *StatsUseCase, opts Options, renderers ...ReportRenderer) *ReportUseCase {
	byFormat := make(map[string]ReportRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &ReportUseCase{repos: repos, stats: stats, renderers: byFormat, opts: opts.withDefaults()}
}

// ExportFile archivo generado por Export.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// DriverSummaries totales por conductor de la bodega en el rango, ordenados por importe.
func (uc *ReportUseCase) DriverSummaries(ctx context.Context, warehouseID string, rng entity.DateRange, desc bool) ([]entity.DriverSummary, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	records, err := uc.records(ctx, warehouseID, rng)
	if err != nil {
		return nil, err
	}
	return piecework.SummarizeDrivers(records, desc), nil
}

// Export genera el reporte de la bodega en el formato pedido (xlsx o pdf).
func (uc *ReportUseCase) Export(ctx context.Context, warehouseID string, rng entity.DateRange, format string) (*ExportFile, error) {
	if warehouseID == "" {
		return nil, domain.NewFieldError("warehouse_id", "es requerido")
	}
	renderer, ok := uc.renderers[format]
	if !ok {
		return nil, domain.NewFieldError("format", "no soportado")
	}

	records, err := uc.records(ctx, warehouseID, rng)
	if err != nil {
		return nil, err
	}
	stats, err := uc.stats.Compute(ctx, "", warehouseID, rng)
	if err != nil {
		return nil, err
	}
	sctx, cancel := uc.opts.storeCtx(ctx)
	names, err := categoryNames(sctx, uc.repos.Categories, piecework.CategoryIDs(records))
	cancel()
	if err != nil {
		return nil, uc.opts.classify("reports.categories", err)
	}

	data := &ReportData{
		WarehouseID:   warehouseID,
		Range:         rng,
		Records:       records,
		CategoryNames: names,
		Stats:         stats,
		Drivers:       piecework.SummarizeDrivers(records, true),
		GeneratedAt:   uc.opts.Now(),
	}
	content, err := renderer.Render(ctx, data)
	if err != nil {
		uc.opts.Logger.Error().Err(err).Str("format", format).Msg("no se pudo generar el reporte")
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	uc.opts.Logger.Info().
		Str("warehouse_id", warehouseID).
		Str("format", format).
		Int("records", len(records)).
		Msg("reporte exportado")
	return &ExportFile{
		Name:        reportFileName(warehouseID, rng, data.GeneratedAt, format),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func (uc *ReportUseCase) records(ctx context.Context, warehouseID string, rng entity.DateRange) ([]*entity.PieceWorkRecord, error) {
	ctx, cancel := uc.opts.storeCtx(ctx)
	defer cancel()
	records, err := uc.repos.Records.List(ctx, repository.RecordFilter{WarehouseID: warehouseID, Range: rng})
	if err != nil {
		return nil, uc.opts.classify("reports.records", err)
	}
	return records, nil
}

func reportFileName(warehouseID string, rng entity.DateRange, at time.Time, format string) string {
	from, to := formatBound(rng.From), formatBound(rng.To)
	if from == "" && to == "" {
		return fmt.Sprintf("destajo_%s_%s.%s", warehouseID, at.Format("20060102"), format)
	}
	return fmt.Sprintf("destajo_%s_%s_%s.%s", warehouseID, orDash(from), orDash(to), format)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(entity.DateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
