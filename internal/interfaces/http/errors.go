package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/piecework-api/internal/application/dto"
	"github.com/jhoicas/piecework-api/internal/domain"
)

// respondError traduce un error de caso de uso a status HTTP + dto.ErrorResponse.
// Un BatchError también envuelve su causa: una caída del almacenamiento dentro de un lote
// responde 503 y el resto de lotes fallidos 422 con el índice, sin exponer la causa.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var (
		batchErr *domain.BatchError
		valErr   *domain.ValidationError
	)
	switch {
	case errors.Is(err, errInvalidBody):
		return badBody(c)
	case errors.Is(err, domain.ErrTransient), errors.Is(err, context.Canceled):
		return unavailable(c)
	case errors.As(err, &batchErr):
		log.Warn().Err(err).Int("index", batchErr.Index).Str("path", c.Path()).Msg("lote revertido")
		idx := batchErr.Index
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "PARTIAL_FAILURE", Message: domain.ErrPartialFailure.Error(), Index: &idx,
		})
	case errors.As(err, &valErr):
		body := dto.ErrorResponse{Code: "VALIDATION", Message: valErr.Error(), Field: valErr.Field}
		if valErr.Index >= 0 {
			idx := valErr.Index
			body.Index = &idx
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el registro cambió, reintente"})
	case errors.Is(err, domain.ErrForbidden):
		return forbidden(c, "acceso denegado")
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "almacenamiento no disponible, reintente"})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}
