package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/piecework-api/internal/application/dto"
	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/domain"
	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// RecordHandler maneja la captura y consulta de registros a destajo.
type RecordHandler struct {
	uc  *apppw.AccrualUseCase
	log zerolog.Logger
}

// NewRecordHandler construye el handler.
func NewRecordHandler(uc *apppw.AccrualUseCase, log zerolog.Logger) *RecordHandler {
	return &RecordHandler{uc: uc, log: log}
}

// Submit godoc
// @Summary      Registrar un envío (nuevo o acumulando sobre el registro del mismo día)
// @Tags         piecework
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitRequest  true  "Envío"
// @Success      201   {object}  dto.SubmitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/piecework/records [post]
func (h *RecordHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	userID, ok := scopedUserID(c, strings.TrimSpace(in.UserID))
	if !ok {
		return forbidden(c, "un conductor solo puede registrar su propio trabajo")
	}
	if userID == "" {
		userID = GetUserID(c)
	}
	workDate, err := entity.ParseDate(in.WorkDate)
	if err != nil {
		return respondError(c, h.log, domain.NewFieldError("work_date", "debe tener formato YYYY-MM-DD"))
	}

	res, err := h.uc.Submit(c.UserContext(), entity.SubmissionContext{
		UserID:      userID,
		WarehouseID: in.WarehouseID,
		WorkDate:    workDate,
	}, dto.ToItems(in.Items), in.Accumulate)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		Created: dto.NewRecordList(res.Created),
		Merged:  dto.NewRecordList(res.Merged),
	})
}

// Accumulate godoc
// @Summary      Acumular ítems sobre un registro existente
// @Tags         piecework
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  dto.AccumulateRequest  true  "Ítems"
// @Success      200   {object}  dto.RecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/piecework/records/{id}/accumulate [post]
func (h *RecordHandler) Accumulate(c *fiber.Ctx) error {
	var in dto.AccumulateRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	id := c.Params("id")
	if _, ok, err := h.owned(c, id); !ok {
		return err
	}
	rec, err := h.uc.SubmitWithAccumulate(c.UserContext(), id, dto.ToItems(in.Items))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewRecordResponse(rec))
}

// SameDay godoc
// @Summary      Registro del mismo día para (usuario, bodega, categoría)
// @Tags         piecework
// @Security     Bearer
// @Produce      json
// @Param        user_id       query  string  false  "Usuario (gerentes)"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        category_id   query  string  true   "Categoría"
// @Param        date          query  string  true   "YYYY-MM-DD"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/piecework/records/same-day [get]
func (h *RecordHandler) SameDay(c *fiber.Ctx) error {
	userID, ok := scopedUserID(c, c.Query("user_id"))
	if !ok {
		return forbidden(c, "un conductor solo puede consultar sus registros")
	}
	if userID == "" {
		userID = GetUserID(c)
	}
	warehouseID, categoryID := c.Query("warehouse_id"), c.Query("category_id")
	if warehouseID == "" {
		return respondError(c, h.log, domain.NewFieldError("warehouse_id", "es requerido"))
	}
	if categoryID == "" {
		return respondError(c, h.log, domain.NewFieldError("category_id", "es requerido"))
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if date == nil {
		return respondError(c, h.log, domain.NewFieldError("date", "es requerido"))
	}
	rec, err := h.uc.FindSameDay(c.UserContext(), userID, warehouseID, categoryID, *date)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if rec == nil {
		return notFound(c, "sin registro para ese día")
	}
	return c.JSON(dto.NewRecordResponse(rec))
}

// List godoc
// @Summary      Listar registros (conductores: solo los propios)
// @Tags         piecework
// @Security     Bearer
// @Produce      json
// @Param        user_id       query  string  false  "Usuario"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "YYYY-MM-DD"
// @Param        to            query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ListResponse[dto.RecordResponse]
// @Router       /api/piecework/records [get]
func (h *RecordHandler) List(c *fiber.Ctx) error {
	userID, ok := scopedUserID(c, c.Query("user_id"))
	if !ok {
		return forbidden(c, "un conductor solo puede consultar sus registros")
	}
	rng, err := queryRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	warehouseID := c.Query("warehouse_id")

	ctx := c.UserContext()
	var records []*entity.PieceWorkRecord
	switch {
	case userID != "" && warehouseID != "":
		records, err = h.uc.ListByUserAndWarehouse(ctx, userID, warehouseID, rng)
	case userID != "":
		records, err = h.uc.ListByUser(ctx, userID, rng)
	case warehouseID != "":
		records, err = h.uc.ListByWarehouse(ctx, warehouseID, rng)
	default:
		records, err = h.uc.ListAll(ctx, rng)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewList(dto.NewRecordList(records)))
}

// GetByID godoc
// @Summary      Obtener registro por ID
// @Tags         piecework
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/piecework/records/{id} [get]
func (h *RecordHandler) GetByID(c *fiber.Ctx) error {
	rec, ok, err := h.owned(c, c.Params("id"))
	if !ok {
		return err
	}
	return c.JSON(dto.NewRecordResponse(rec))
}

// Update godoc
// @Summary      Reemplazar cantidades y precios de un registro (gerentes)
// @Tags         piecework
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  dto.PieceWorkItemRequest  true  "Valores nuevos"
// @Success      200   {object}  dto.RecordResponse
// @Router       /api/piecework/records/{id} [put]
func (h *RecordHandler) Update(c *fiber.Ctx) error {
	var in dto.PieceWorkItemRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	rec, err := h.uc.UpdateRecord(c.UserContext(), c.Params("id"), in.ToEntity())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewRecordResponse(rec))
}

// Delete godoc
// @Summary      Eliminar registro (gerentes)
// @Tags         piecework
// @Security     Bearer
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/piecework/records/{id} [delete]
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteRecord(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// owned carga el registro y verifica que un conductor solo acceda a los suyos.
// Con ok=false la respuesta ya fue escrita y err es el resultado de escribirla.
func (h *RecordHandler) owned(c *fiber.Ctx, id string) (rec *entity.PieceWorkRecord, ok bool, err error) {
	rec, err = h.uc.GetRecord(c.UserContext(), id)
	if err != nil {
		return nil, false, respondError(c, h.log, err)
	}
	if rec == nil {
		return nil, false, notFound(c, "registro no encontrado")
	}
	if !isManager(c) && rec.UserID != GetUserID(c) {
		return nil, false, forbidden(c, "el registro pertenece a otro conductor")
	}
	return rec, true, nil
}
