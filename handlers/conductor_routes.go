package handlers

import (
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConductorRoutes(admin fiber.Router, conductorService *services.ConductorService) {
	admin.Get("/conductors", func(c *fiber.Ctx) error {
		conductors, err := conductorService.List(c.UserContext(), c.Query("role"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(conductors)
	})

	admin.Post("/conductors", func(c *fiber.Ctx) error {
		var in services.ConductorInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		conductor, err := conductorService.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(conductor)
	})

	admin.Get("/conductors/:id", func(c *fiber.Ctx) error {
		conductor, err := conductorService.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(conductor)
	})

	admin.Put("/conductors/:id", func(c *fiber.Ctx) error {
		var in services.ConductorInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		conductor, err := conductorService.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(conductor)
	})

	admin.Delete("/conductors/:id", func(c *fiber.Ctx) error {
		if err := conductorService.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
