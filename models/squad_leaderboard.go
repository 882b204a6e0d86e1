package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecentMatchLimit bounds SquadLeaderboard.RecentMatches.
const RecentMatchLimit = 5

// SquadLeaderboard aggregates a squad's results across every completed match.
// It is only ever written when a SquadGameState completes.
type SquadLeaderboard struct {
	ID                   string                                         `json:"id" gorm:"primaryKey"`
	SquadID              string                                         `json:"squadId" gorm:"uniqueIndex;not null"`
	SquadName            string                                         `json:"squadName"`
	MatchesPlayed        int                                            `json:"matchesPlayed"`
	TotalKills           int                                            `json:"totalKills"`
	TotalPoints          float64                                        `json:"totalPoints" gorm:"index"`
	TotalPlacementPoints float64                                        `json:"totalPlacementPoints"`
	AverageKills         float64                                        `json:"averageKills"`
	AveragePoints        float64                                        `json:"averagePoints"`
	AveragePlacement     float64                                        `json:"averagePlacement"`
	BestPlacement        int                                            `json:"bestPlacement"` // 0 = never placed
	Wins                 int                                            `json:"wins"`
	Top3Finishes         int                                            `json:"top3Finishes"`
	Top5Finishes         int                                            `json:"top5Finishes"`
	PlayerStats          datatypes.JSONType[map[string]PlayerAggregate] `json:"playerStats"`
	RecentMatches        datatypes.JSONType[[]RecentMatch]              `json:"recentMatches"`
	LastMatchAt          *time.Time                                     `json:"lastMatchAt,omitempty"`

	Timestamps
}

// PlayerAggregate is a player's cumulative line on a squad leaderboard, keyed by ffId.
type PlayerAggregate struct {
	PlayerName    string `json:"playerName"`
	FFName        string `json:"ffName"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Kills         int    `json:"kills"`
	Assists       int    `json:"assists"`
	Damage        int    `json:"damage"`
	Revives       int    `json:"revives"`
	TimesSurvived int    `json:"timesSurvived"`
}

// RecentMatch is one entry of the recent-form history, newest first.
type RecentMatch struct {
	SquadGameStateID string    `json:"squadGameStateId"`
	MatchNumber      int       `json:"matchNumber"`
	Placement        int       `json:"placement"`
	Kills            int       `json:"kills"`
	Points           float64   `json:"points"`
	PlayedAt         time.Time `json:"playedAt"`
}
