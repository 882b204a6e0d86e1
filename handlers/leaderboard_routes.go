package handlers

import (
	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		rows, err := leaderboardService.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	})

	app.Get("/leaderboard/:squadId", func(c *fiber.Ctx) error {
		row, err := leaderboardService.Get(c.UserContext(), c.Params("squadId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(row)
	})
}
