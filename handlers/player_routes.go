package handlers

import (
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

type killUpdateRequest struct {
	Map   string `json:"map"`
	Value any    `json:"value"`
}

type killSyncRequest struct {
	Players []services.KillSync `json:"players"`
}

func SetupPlayerRoutes(app *fiber.App, admin fiber.Router, playerService *services.PlayerService) {
	// 🔓 Public
	app.Post("/players", func(c *fiber.Ctx) error {
		var in services.RegisterPlayerInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		player, err := playerService.RegisterPlayer(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(player)
	})

	app.Get("/players", func(c *fiber.Ctx) error {
		players, err := playerService.ListPlayers(c.UserContext(), c.Query("sort") == "total")
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(players)
	})

	app.Get("/players/:ffId", func(c *fiber.Ctx) error {
		player, err := playerService.GetPlayer(c.UserContext(), c.Params("ffId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(player)
	})

	// 🔒 Admin
	admin.Patch("/players/:ffId/kills", func(c *fiber.Ctx) error {
		var req killUpdateRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		result, err := playerService.UpdatePlayerKills(c.UserContext(), c.Params("ffId"), req.Map, req.Value)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	admin.Post("/players/sync", func(c *fiber.Ctx) error {
		var req killSyncRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		result, err := playerService.SyncPlayerKills(c.UserContext(), req.Players)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	admin.Delete("/players/:ffId", func(c *fiber.Ctx) error {
		if err := playerService.DeletePlayer(c.UserContext(), c.Params("ffId")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
