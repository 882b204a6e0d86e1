// middleware/auth.go
package middleware

import (
	"log"

	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by StaffContextMiddleware.
const (
	LocalStaffID   = "staff_id"
	LocalStaffRole = "staff_role"
)

// StaffContextMiddleware attaches the conductor acting on an admin request.
// Both headers are optional; an unknown role is rejected.
func StaffContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		staffID := c.Get("X-Staff-ID")
		role := ""
		if raw := c.Get("X-Staff-Role"); raw != "" {
			normalized, ok := services.NormalizeRole(raw)
			if !ok {
				log.Printf("❌ [STAFF_CTX] unknown role %q on %s", raw, c.Path())
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "unknown staff role",
					"code":  "INVALID_ROLE",
				})
			}
			role = normalized
		}

		c.Locals(LocalStaffID, staffID)
		c.Locals(LocalStaffRole, role)

		if c.Method() != fiber.MethodGet {
			log.Printf("👤 [STAFF_CTX] %s %s by staff=%q role=%q", c.Method(), c.Path(), staffID, role)
		}
		return c.Next()
	}
}

// StaffID returns the acting conductor id, or "" when none was sent.
func StaffID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalStaffID).(string)
	return id
}

// StaffRole returns the acting conductor's normalised role, or "".
func StaffRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalStaffRole).(string)
	return role
}
