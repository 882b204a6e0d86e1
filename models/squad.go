// models/squad.go
package models

import (
	"time"
)

const (
	SquadSize      = 4
	RoomUnassigned = "Unassigned"
)

// Squad is a fixed four-player team. Room is assigned once at registration
// and only changes through an explicit admin override.
type Squad struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	SquadName    string        `json:"squadName" gorm:"uniqueIndex;not null"`
	Room         string        `json:"room" gorm:"index;not null;default:'Unassigned'"`
	TotalKills   int           `json:"totalKills" gorm:"not null;default:0"`
	RegisteredAt time.Time     `json:"registeredAt" gorm:"index"`
	Players      []SquadPlayer `json:"players" gorm:"foreignKey:SquadID;constraint:OnDelete:CASCADE"`

	Timestamps
}

// SquadPlayer belongs to exactly one squad. FFID is unique within the squad only.
type SquadPlayer struct {
	ID         string `json:"id" gorm:"primaryKey"`
	SquadID    string `json:"squadId" gorm:"not null;uniqueIndex:idx_squad_players_squad_ff_id"`
	Slot       int    `json:"slot" gorm:"not null"`
	PlayerName string `json:"playerName" gorm:"not null"`
	FFName     string `json:"ffName" gorm:"column:ff_name;not null"`
	FFID       string `json:"ffId" gorm:"column:ff_id;not null;uniqueIndex:idx_squad_players_squad_ff_id;index:idx_squad_players_ff_id"`
	Map1       int    `json:"map1" gorm:"column:map1;not null;default:0"`
	Map2       int    `json:"map2" gorm:"column:map2;not null;default:0"`
	Map3       int    `json:"map3" gorm:"column:map3;not null;default:0"`
	Total      int    `json:"total" gorm:"not null;default:0"`
}

// RegistrationLock rows are locked FOR UPDATE to serialise registrations that
// derive state from a count (room assignment).
type RegistrationLock struct {
	Name string `gorm:"primaryKey"`
}

const SquadRegistrationLock = "squads"
