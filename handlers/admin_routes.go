package handlers

import (
	"log"

	"ff-tournament-system/middleware"
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminGroup returns the /admin router: Bearer token first, then staff context.
func AdminGroup(app *fiber.App, adminToken string) fiber.Router {
	return app.Group("/admin",
		middleware.AdminAuthMiddleware(adminToken),
		middleware.StaffContextMiddleware(),
	)
}

func SetupAdminRoutes(admin fiber.Router, adminService *services.AdminService) {
	admin.Delete("/data", func(c *fiber.Ctx) error {
		result, err := adminService.DeleteAllData(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("[ADMIN] data wiped by %s", actor(c))
		return c.JSON(fiber.Map{"deleted": result})
	})
}

func SetupHealthRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
