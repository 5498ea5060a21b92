package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/piecework-api/internal/application/dto"
	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain"
)

// StatsHandler estadísticas y reportes de gerente.
type StatsHandler struct {
	stats   *apppw.StatsUseCase
	reports *apppw.ReportUseCase
	log     zerolog.Logger
}

// NewStatsHandler construye el handler.
func NewStatsHandler(stats *apppw.StatsUseCase, reports *apppw.ReportUseCase, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, reports: reports, log: log}
}

// Stats godoc
// @Summary      Estadísticas de una bodega (opcionalmente de un usuario) en un rango
// @Tags         piecework
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        user_id       query  string  false  "Usuario"
// @Param        from          query  string  false  "YYYY-MM-DD"
// @Param        to            query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  entity.Stats
// @Router       /api/piecework/stats [get]
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	userID, ok := scopedUserID(c, c.Query("user_id"))
	if !ok {
		return forbidden(c, "un conductor solo puede consultar sus estadísticas")
	}
	rng, err := queryRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	stats, err := h.stats.Compute(c.UserContext(), userID, c.Query("warehouse_id"), rng)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

// Drivers godoc
// @Summary      Totales por conductor de una bodega, ordenados por importe
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        from          query  string  false  "YYYY-MM-DD"
// @Param        to            query  string  false  "YYYY-MM-DD"
// @Param        order         query  string  false  "desc (default) | asc"
// @Success      200  {object}  dto.ListResponse[entity.DriverSummary]
// @Router       /api/piecework/reports/drivers [get]
func (h *StatsHandler) Drivers(c *fiber.Ctx) error {
	rng, err := queryRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	order := strings.ToLower(c.Query("order", "desc"))
	if order != "asc" && order != "desc" {
		return respondError(c, h.log, domain.NewFieldError("order", "debe ser asc o desc"))
	}
	drivers, err := h.reports.DriverSummaries(c.UserContext(), c.Query("warehouse_id"), rng, order == "desc")
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewList(drivers))
}

// Export godoc
// @Summary      Descargar el reporte de una bodega (xlsx o pdf)
// @Tags         reports
// @Security     Bearer
// @Produce      application/octet-stream
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        from          query  string  false  "YYYY-MM-DD"
// @Param        to            query  string  false  "YYYY-MM-DD"
// @Param        format        query  string  false  "xlsx (default) | pdf"
// @Success      200
// @Router       /api/piecework/reports/export [get]
func (h *StatsHandler) Export(c *fiber.Ctx) error {
	rng, err := queryRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	file, err := h.reports.Export(c.UserContext(), c.Query("warehouse_id"), rng, strings.ToLower(c.Query("format", "xlsx")))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Content)
}
