package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
// Los errores no tipados se registran y se devuelven como INTERNAL sin detalle.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var (
		validation   *domain.ValidationError
		quantity     *domain.InvalidQuantityError
		insufficient *domain.InsufficientStockError
		conflict     *domain.ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: validation.Error(),
			Details: map[string]any{"field": validation.Field},
		})
	case errors.As(err, &quantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: quantity.Error(),
			Details: map[string]any{"field": "quantity"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrMaterialNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente",
			Details: map[string]any{
				"material_id": insufficient.MaterialID,
				"requested":   insufficient.Requested,
				"available":   insufficient.Available,
			},
		})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente",
			Details: map[string]any{"attempts": conflict.Attempts},
		})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "owner_id no encontrado en el token"})
}
