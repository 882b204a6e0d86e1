// models/game_state.go
package models

import (
	"time"

	"ff-tournament-system/scoring"

	"gorm.io/datatypes"
)

// GameState is the record of "a match is currently running". The partial
// unique index allows any number of finished states but only one active one.
type GameState struct {
	ID                 string                                  `json:"id" gorm:"primaryKey"`
	Active             bool                                    `json:"active" gorm:"not null;uniqueIndex:idx_game_states_single_active,where:active = true"`
	TeamsLocked        bool                                    `json:"teamsLocked" gorm:"not null"`
	RandomTeams        datatypes.JSONType[[][]TeamMember]      `json:"randomTeams"`
	SelectedTopPlayers datatypes.JSONType[[]string]            `json:"selectedTopPlayers"`
	KillPoints         float64                                 `json:"killPoints" gorm:"not null"`
	PlacementPoints    datatypes.JSONType[scoring.PointsTable] `json:"placementPoints"`
	MatchNumber        int                                     `json:"matchNumber" gorm:"index;not null"`
	StartTime          time.Time                               `json:"startTime"`
	EndTime            *time.Time                              `json:"endTime,omitempty"`
	LastUpdated        time.Time                               `json:"lastUpdated"`

	Timestamps
}

// TeamMember is one player placed into a generated random team.
type TeamMember struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	FFName     string `json:"ffName"`
	FFID       string `json:"ffId"`
}

// ScoringTable returns the match's placement table, or the default one.
func (g *GameState) ScoringTable() scoring.PointsTable {
	return g.PlacementPoints.Data().OrDefault()
}
