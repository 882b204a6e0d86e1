package handlers

import (
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

type squadKillsRequest struct {
	Map1 any `json:"map1"`
	Map2 any `json:"map2"`
	Map3 any `json:"map3"`
}

type roomOverrideRequest struct {
	Room string `json:"room"`
}

func SetupSquadRoutes(app *fiber.App, admin fiber.Router, squadService *services.SquadService) {
	// 🔓 Public
	app.Post("/squads", func(c *fiber.Ctx) error {
		var in services.RegisterSquadInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		squad, err := squadService.RegisterSquad(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(squad)
	})

	app.Get("/squads", func(c *fiber.Ctx) error {
		squads, err := squadService.ListSquads(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(squads)
	})

	app.Get("/squads/:id", func(c *fiber.Ctx) error {
		squad, err := squadService.GetSquad(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(squad)
	})

	app.Get("/rooms", func(c *fiber.Ctx) error {
		rooms, err := squadService.ListRooms(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rooms)
	})

	// 🔒 Admin
	admin.Put("/squads/:id/players/:ffId/kills", func(c *fiber.Ctx) error {
		var req squadKillsRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		squad, err := squadService.UpdateSquadPlayerKills(c.UserContext(),
			c.Params("id"), c.Params("ffId"), req.Map1, req.Map2, req.Map3)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(squad)
	})

	admin.Patch("/squads/:id/room", func(c *fiber.Ctx) error {
		var req roomOverrideRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		squad, err := squadService.OverrideRoom(c.UserContext(), c.Params("id"), req.Room)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(squad)
	})

	admin.Delete("/squads/:id", func(c *fiber.Ctx) error {
		if err := squadService.DeleteSquad(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
