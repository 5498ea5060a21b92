package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/piecework-api/internal/application/dto"
	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
)

// CategoryHandler maneja las peticiones HTTP de categorías a destajo.
type CategoryHandler struct {
	uc  *apppw.CatalogUseCase
	log zerolog.Logger
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *apppw.CatalogUseCase, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar categorías (activas, o todas con all=true para gerentes)
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        all  query  bool  false  "Incluir inactivas"
// @Success      200  {object}  dto.ListResponse[dto.CategoryResponse]
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	list := h.uc.ListActive
	if c.QueryBool("all") && isManager(c) {
		list = h.uc.ListAll
	}
	cats, err := list(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewList(dto.NewCategoryList(cats)))
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	cat, err := h.uc.Create(c.UserContext(), in.Name, in.Description)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCategoryResponse(cat))
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.UpdateCategoryRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCategoryRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	cat, err := h.uc.Update(c.UserContext(), c.Params("id"), in.ToPatch())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if cat == nil {
		return notFound(c, "categoría no encontrada")
	}
	return c.JSON(dto.NewCategoryResponse(cat))
}

// Delete godoc
// @Summary      Eliminar categoría y sus precios
// @Tags         categories
// @Security     Bearer
// @Param        id   path  string  true  "ID de la categoría"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cleanup godoc
// @Summary      Eliminar categorías sin ningún precio configurado
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        dry_run  query  bool  false  "Solo listar candidatas"
// @Success      200  {object}  dto.CleanupResponse
// @Router       /api/categories/cleanup [post]
func (h *CategoryHandler) Cleanup(c *fiber.Ctx) error {
	if c.QueryBool("dry_run") {
		cats, err := h.uc.FindUnused(c.UserContext())
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(dto.CleanupResponse{Success: true, DryRun: true, Candidates: dto.NewCategoryList(cats)})
	}
	res, err := h.uc.DeleteUnused(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.CleanupResponse{Success: res.Success, DeletedCount: res.DeletedCount})
}
