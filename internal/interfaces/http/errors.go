package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/domain"
	"github.com/jhoicas/interbranch-api/pkg/logger"
)

// retryAfterSeconds valor del header Retry-After ante contención de bloqueos.
const retryAfterSeconds = "1"

// errorStatus traduce un error del motor a (status HTTP, código).
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.Is(err, domain.ErrDuplicateReference):
		return fiber.StatusConflict, "DUPLICATE_REFERENCE"
	case errors.Is(err, domain.ErrUnbalancedEntry):
		return fiber.StatusUnprocessableEntity, "UNBALANCED_ENTRY"
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable, "LOCK_TIMEOUT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError escribe el ErrorResponse. Los 500 se registran y no exponen el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := errorStatus(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}
	switch status {
	case fiber.StatusInternalServerError:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error inesperado")
		body.Message = "error interno"
	case fiber.StatusServiceUnavailable:
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		body.Retryable = true
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
