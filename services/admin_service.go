package services

import (
	"context"
	"log"

	"ff-tournament-system/models"

	"gorm.io/gorm"
)

type AdminService struct {
	DB  *gorm.DB
	Hub *Hub
}

func NewAdminService(db *gorm.DB, hub *Hub) *AdminService {
	return &AdminService{DB: db, Hub: hub}
}

// WipeResult counts the rows DeleteAllData removed.
type WipeResult struct {
	Players      int64 `json:"players"`
	SquadPlayers int64 `json:"squadPlayers"`
	Squads       int64 `json:"squads"`
	Leaderboards int64 `json:"leaderboards"`
}

// DeleteAllData removes every player, squad and leaderboard row. Conductors
// and match history are kept. Running it on empty tables returns zero counts.
func (s *AdminService) DeleteAllData(ctx context.Context) (*WipeResult, error) {
	result := &WipeResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range []struct {
			model any
			count *int64
		}{
			{&models.SquadPlayer{}, &result.SquadPlayers},
			{&models.Squad{}, &result.Squads},
			{&models.Player{}, &result.Players},
			{&models.SquadLeaderboard{}, &result.Leaderboards},
		} {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(step.model)
			if res.Error != nil {
				return res.Error
			}
			*step.count = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	log.Printf("[ADMIN] wiped data: %d players, %d squads (%d members), %d leaderboard rows",
		result.Players, result.Squads, result.SquadPlayers, result.Leaderboards)
	s.Hub.Publish(EventDataWiped, result)
	return result, nil
}
