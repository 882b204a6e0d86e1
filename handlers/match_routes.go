package handlers

import (
	"log"

	"ff-tournament-system/services"

	"github.com/gofiber/fiber/v2"
)

type beginSquadRequest struct {
	SquadID string `json:"squadId"`
}

type placementRequest struct {
	ID        string `json:"id"`
	Placement int    `json:"placement"`
}

type endMatchRequest struct {
	Placements map[string]int `json:"placements"`
}

type topPlayersRequest struct {
	FFIDs []string `json:"ffIds"`
}

type randomTeamsRequest struct {
	TeamSize int `json:"teamSize"`
}

type lockTeamsRequest struct {
	Locked bool `json:"locked"`
}

func SetupMatchRoutes(app *fiber.App, admin fiber.Router, matchService *services.MatchService) {
	// 🔓 Public
	app.Get("/match", func(c *fiber.Ctx) error {
		gs, err := matchService.ActiveState(c.UserContext())
		if services.IsNotFound(err) {
			return c.JSON(fiber.Map{"active": false, "gameState": nil})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"active": true, "gameState": gs})
	})

	app.Get("/match/squads", func(c *fiber.Ctx) error {
		states, err := matchService.ListSquadStates(c.UserContext(), c.QueryInt("matchNumber", 0))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(states)
	})

	// 🔒 Admin
	match := admin.Group("/match")

	match.Post("/start", func(c *fiber.Ctx) error {
		var cfg services.MatchConfig
		if len(c.Body()) > 0 {
			if err := parseBody(c, &cfg); err != nil {
				return respondError(c, err)
			}
		}
		gs, err := matchService.StartMatch(c.UserContext(), cfg)
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("[MATCH] match %d started by %s", gs.MatchNumber, actor(c))
		return c.Status(fiber.StatusCreated).JSON(gs)
	})

	match.Post("/squads", func(c *fiber.Ctx) error {
		var req beginSquadRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		sgs, err := matchService.BeginSquadMatch(c.UserContext(), req.SquadID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sgs)
	})

	match.Put("/squads/:sgsId/players/:ffId", func(c *fiber.Ctx) error {
		var in services.PlayerStatsInput
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
		sgs, err := matchService.RecordPlayerStats(c.UserContext(), c.Params("sgsId"), c.Params("ffId"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sgs)
	})

	match.Post("/placement", func(c *fiber.Ctx) error {
		var req placementRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		sgs, err := matchService.SetSquadPlacement(c.UserContext(), req.ID, req.Placement)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sgs)
	})

	match.Post("/end", func(c *fiber.Ctx) error {
		var req endMatchRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return respondError(c, err)
			}
		}
		if len(req.Placements) == 0 {
			gs, err := matchService.EndMatch(c.UserContext())
			if err != nil {
				return respondError(c, err)
			}
			log.Printf("[MATCH] match %d ended by %s", gs.MatchNumber, actor(c))
			return c.JSON(fiber.Map{"gameState": gs})
		}
		result, err := matchService.FinishMatch(c.UserContext(), req.Placements)
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("[MATCH] match %d finished by %s", result.GameState.MatchNumber, actor(c))
		return c.JSON(result)
	})

	match.Post("/reset", func(c *fiber.Ctx) error {
		result, err := matchService.ResetMatch(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("[MATCH] reset by %s", actor(c))
		return c.JSON(result)
	})

	match.Put("/top-players", func(c *fiber.Ctx) error {
		var req topPlayersRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		gs, err := matchService.SelectTopPlayers(c.UserContext(), req.FFIDs)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(gs)
	})

	match.Post("/teams/random", func(c *fiber.Ctx) error {
		var req randomTeamsRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return respondError(c, err)
			}
		}
		gs, err := matchService.GenerateRandomTeams(c.UserContext(), req.TeamSize)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(gs)
	})

	match.Put("/teams/lock", func(c *fiber.Ctx) error {
		var req lockTeamsRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		gs, err := matchService.LockTeams(c.UserContext(), req.Locked)
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("[MATCH] teams locked=%t by %s", req.Locked, actor(c))
		return c.JSON(gs)
	})
}
