// models/player.go
package models

import (
	"time"
)

// Player is a solo registration. Map1..Map3 are per-map kill counts and
// Total is always recomputed server-side from them.
type Player struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	PlayerName string    `json:"playerName" gorm:"not null"`
	FFName     string    `json:"ffName" gorm:"column:ff_name;not null"`
	FFID       string    `json:"ffId" gorm:"column:ff_id;uniqueIndex;not null"`
	Map1       int       `json:"map1" gorm:"column:map1;not null;default:0"`
	Map2       int       `json:"map2" gorm:"column:map2;not null;default:0"`
	Map3       int       `json:"map3" gorm:"column:map3;not null;default:0"`
	Total      int       `json:"total" gorm:"not null;default:0"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime"`

	Timestamps
}
