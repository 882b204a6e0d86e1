package models

import (
	"time"

	"gorm.io/datatypes"
)

// SquadGameState is one squad's performance in one match. SquadID is a weak
// reference: the squad may be deleted and the history row stays.
//
// PENDING:   IsActive=true,  IsCompleted=false
// COMPLETED: IsActive=false, IsCompleted=true
type SquadGameState struct {
	ID              string                                 `json:"id" gorm:"primaryKey"`
	GameStateID     string                                 `json:"gameStateId" gorm:"index;not null"`
	SquadID         string                                 `json:"squadId" gorm:"index;not null"`
	SquadName       string                                 `json:"squadName"`
	MatchNumber     int                                    `json:"matchNumber" gorm:"index;not null"`
	SquadPlacement  *int                                   `json:"squadPlacement"`
	PlacementPoints float64                                `json:"placementPoints"`
	SquadPoints     float64                                `json:"squadPoints"`
	TotalKills      int                                    `json:"totalKills"`
	Players         datatypes.JSONType[[]MatchPlayerStats] `json:"players"`
	StartTime       time.Time                              `json:"startTime"`
	EndTime         *time.Time                             `json:"endTime,omitempty"`
	IsActive        bool                                   `json:"isActive" gorm:"index;not null"`
	IsCompleted     bool                                   `json:"isCompleted" gorm:"not null"`

	Timestamps
}

// MatchPlayerStats is a player's line in a single match. KillsAtStart is the
// player's roster total when the line was created; Kills is what the player
// added on top of it during this match.
type MatchPlayerStats struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	FFName       string `json:"ffName"`
	FFID         string `json:"ffId"`
	KillsAtStart int    `json:"killsAtStart"`
	Kills        int    `json:"kills"`
	Assists      int    `json:"assists"`
	Damage       int    `json:"damage"`
	Survived     bool   `json:"survived"`
	Revives      int    `json:"revives"`
}
