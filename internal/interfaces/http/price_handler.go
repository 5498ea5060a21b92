package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/piecework-api/internal/application/dto"
	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// PriceHandler maneja la configuración de precios por bodega y su resolución.
type PriceHandler struct {
	catalog  *apppw.CatalogUseCase
	resolver *apppw.PriceResolverUseCase
	log      zerolog.Logger
}

// NewPriceHandler construye el handler.
func NewPriceHandler(catalog *apppw.CatalogUseCase, resolver *apppw.PriceResolverUseCase, log zerolog.Logger) *PriceHandler {
	return &PriceHandler{catalog: catalog, resolver: resolver, log: log}
}

// ListByWarehouse godoc
// @Summary      Precios configurados de una bodega (opcionalmente de una categoría)
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path   string  true   "ID de la bodega"
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Success      200  {object}  dto.ListResponse[dto.PriceResponse]
// @Router       /api/warehouses/{warehouseId}/prices [get]
func (h *PriceHandler) ListByWarehouse(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouseId")
	var (
		prices []*entity.CategoryPrice
		err    error
	)
	if categoryID := strings.TrimSpace(c.Query("category_id")); categoryID != "" {
		prices, err = h.catalog.GetPrices(c.UserContext(), warehouseID, categoryID)
	} else {
		prices, err = h.catalog.ListPricesByWarehouse(c.UserContext(), warehouseID)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewList(dto.NewPriceList(prices)))
}

// Upsert godoc
// @Summary      Crear o reemplazar el precio de (bodega, categoría, tipo, fecha)
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceRequest  true  "Precio"
// @Success      200   {object}  dto.PriceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/prices [put]
func (h *PriceHandler) Upsert(c *fiber.Ctx) error {
	var in dto.PriceRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	input, err := toPriceInput(-1, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	p, err := h.catalog.UpsertPrice(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPriceResponse(p))
}

// BatchUpsert godoc
// @Summary      Crear o reemplazar varios precios (todo o nada)
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchPriceRequest  true  "Precios"
// @Success      200   {object}  dto.ListResponse[dto.PriceResponse]
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/prices/batch [put]
func (h *PriceHandler) BatchUpsert(c *fiber.Ctx) error {
	var in dto.BatchPriceRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	inputs := make([]apppw.PriceInput, 0, len(in.Prices))
	for i, p := range in.Prices {
		input, err := toPriceInput(i, p)
		if err != nil {
			return respondError(c, h.log, err)
		}
		inputs = append(inputs, input)
	}
	prices, err := h.catalog.BatchUpsertPrices(c.UserContext(), inputs)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewList(dto.NewPriceList(prices)))
}

// Delete godoc
// @Summary      Eliminar una fila de precio
// @Tags         prices
// @Security     Bearer
// @Param        id   path  string  true  "ID del precio"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/prices/{id} [delete]
func (h *PriceHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.DeletePrice(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Resolve godoc
// @Summary      Precio vigente de una categoría para un conductor
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        category_id   query  string  true   "Categoría"
// @Param        driver_type   query  string  false  "driver_only | with_vehicle"
// @Param        date          query  string  false  "YYYY-MM-DD (default hoy)"
// @Success      200  {object}  dto.PriceQuoteResponse
// @Router       /api/prices/resolve [get]
func (h *PriceHandler) Resolve(c *fiber.Ctx) error {
	asOf, err := queryDate(c, "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var at time.Time
	if asOf != nil {
		at = *asOf
	}
	warehouseID, categoryID := c.Query("warehouse_id"), c.Query("category_id")
	q, err := h.resolver.Resolve(c.UserContext(), warehouseID, categoryID, c.Query("driver_type"), at)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := dto.PriceQuoteResponse{
		WarehouseID:  warehouseID,
		CategoryID:   categoryID,
		DriverType:   q.DriverType,
		AppliedPrice: q.AppliedPrice,
		Locked:       q.Locked,
	}
	if asOf != nil {
		out.Date = asOf.Format(entity.DateLayout)
	} else {
		out.Date = time.Now().UTC().Format(entity.DateLayout)
	}
	if q.Resolved != nil {
		if q.Resolved.HasUnit {
			unit := q.Resolved.UnitPrice
			out.UnitPrice = &unit
		}
		if q.Resolved.HasUpstairs {
			up := q.Resolved.UpstairsPrice
			out.UpstairsPrice = &up
		}
	}
	return c.JSON(out)
}

func toPriceInput(index int, in dto.PriceRequest) (apppw.PriceInput, error) {
	eff, err := entity.ParseDate(in.EffectiveDate)
	if err != nil {
		return apppw.PriceInput{}, &domain.ValidationError{Index: index, Field: "effective_date", Reason: "debe tener formato YYYY-MM-DD"}
	}
	return apppw.PriceInput{
		WarehouseID:   in.WarehouseID,
		CategoryID:    in.CategoryID,
		DriverType:    in.DriverType,
		Price:         in.Price,
		EffectiveDate: eff,
	}, nil
}
