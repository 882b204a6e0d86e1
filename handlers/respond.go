package handlers

import (
	"errors"
	"log"

	"ff-tournament-system/middleware"
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err as {"error", "code"} with the status for its kind.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *services.AppError
	if !errors.As(err, &appErr) {
		appErr = services.NewServerError("INTERNAL_ERROR", "internal server error", err)
	}

	status := fiber.StatusInternalServerError
	switch appErr.Kind {
	case services.KindValidation:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindConflict:
		status = fiber.StatusConflict
	default:
		log.Printf("❌ [HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// parseBody decodes the JSON body into out, answering 400 on failure.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return services.NewValidationError("INVALID_BODY", "request body is not valid JSON")
	}
	return nil
}

// actor describes who made an admin change, for transition logs.
func actor(c *fiber.Ctx) string {
	id := middleware.StaffID(c)
	if id == "" {
		id = "unknown"
	}
	if role := middleware.StaffRole(c); role != "" {
		return id + " (" + role + ")"
	}
	return id
}
