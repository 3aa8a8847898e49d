package handlers

import (
	"errors"

	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var kindStatus = map[services.Kind]int{
	services.KindInvalid:         fiber.StatusBadRequest,
	services.KindUnauthenticated: fiber.StatusUnauthorized,
	services.KindUnauthorized:    fiber.StatusForbidden,
	services.KindNotFound:        fiber.StatusNotFound,
	services.KindConflict:        fiber.StatusConflict,
}

// fail renders a service error. Anything that is not a *services.Error is logged
// and reported as a 500 without details.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if status, ok := kindStatus[svcErr.Kind]; ok {
			return c.Status(status).JSON(fiber.Map{"error": svcErr.Message})
		}
	}

	h.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
