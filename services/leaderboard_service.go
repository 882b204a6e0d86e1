package services

import (
	"context"
	"errors"
	"time"

	"ff-tournament-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// ApplyMatchResult folds a completed squad game state into the squad's
// leaderboard row, creating the row on the squad's first match. It must run
// inside the transaction that completes sgs.
func (s *LeaderboardService) ApplyMatchResult(tx *gorm.DB, sgs *models.SquadGameState) (*models.SquadLeaderboard, error) {
	var lb models.SquadLeaderboard
	err := tx.First(&lb, "squad_id = ?", sgs.SquadID).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, err
	}
	if isNew {
		lb = models.SquadLeaderboard{
			ID:      uuid.NewString(),
			SquadID: sgs.SquadID,
		}
	}

	accumulate(&lb, sgs)

	if isNew {
		err = tx.Create(&lb).Error
	} else {
		err = tx.Save(&lb).Error
	}
	if err != nil {
		return nil, err
	}
	return &lb, nil
}

// accumulate adds one completed match to lb.
func accumulate(lb *models.SquadLeaderboard, sgs *models.SquadGameState) {
	placement := 0
	if sgs.SquadPlacement != nil {
		placement = *sgs.SquadPlacement
	}
	playedAt := time.Now().UTC()
	if sgs.EndTime != nil {
		playedAt = *sgs.EndTime
	}

	prevMatches := lb.MatchesPlayed
	lb.SquadName = sgs.SquadName
	lb.MatchesPlayed++
	lb.TotalKills += sgs.TotalKills
	lb.TotalPoints += sgs.SquadPoints
	lb.TotalPlacementPoints += sgs.PlacementPoints

	n := float64(lb.MatchesPlayed)
	lb.AverageKills = float64(lb.TotalKills) / n
	lb.AveragePoints = lb.TotalPoints / n
	if placement > 0 {
		lb.AveragePlacement = (lb.AveragePlacement*float64(prevMatches) + float64(placement)) / n
		if lb.BestPlacement == 0 || placement < lb.BestPlacement {
			lb.BestPlacement = placement
		}
		if placement == 1 {
			lb.Wins++
		}
		if placement <= 3 {
			lb.Top3Finishes++
		}
		if placement <= 5 {
			lb.Top5Finishes++
		}
	}

	stats := lb.PlayerStats.Data()
	if stats == nil {
		stats = map[string]models.PlayerAggregate{}
	}
	for _, p := range sgs.Players.Data() {
		agg := stats[p.FFID]
		agg.PlayerName = p.PlayerName
		agg.FFName = p.FFName
		agg.MatchesPlayed++
		agg.Kills += p.Kills
		agg.Assists += p.Assists
		agg.Damage += p.Damage
		agg.Revives += p.Revives
		if p.Survived {
			agg.TimesSurvived++
		}
		stats[p.FFID] = agg
	}
	lb.PlayerStats = datatypes.NewJSONType(stats)

	recent := append([]models.RecentMatch{{
		SquadGameStateID: sgs.ID,
		MatchNumber:      sgs.MatchNumber,
		Placement:        placement,
		Kills:            sgs.TotalKills,
		Points:           sgs.SquadPoints,
		PlayedAt:         playedAt,
	}}, lb.RecentMatches.Data()...)
	if len(recent) > models.RecentMatchLimit {
		recent = recent[:models.RecentMatchLimit]
	}
	lb.RecentMatches = datatypes.NewJSONType(recent)
	lb.LastMatchAt = &playedAt
}

// List returns every leaderboard row, best first.
func (s *LeaderboardService) List(ctx context.Context) ([]models.SquadLeaderboard, error) {
	var rows []models.SquadLeaderboard
	err := s.DB.WithContext(ctx).
		Order("total_points DESC").
		Order("total_kills DESC").
		Order("squad_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return rows, nil
}

func (s *LeaderboardService) Get(ctx context.Context, squadID string) (*models.SquadLeaderboard, error) {
	var lb models.SquadLeaderboard
	if err := s.DB.WithContext(ctx).First(&lb, "squad_id = ?", squadID).Error; err != nil {
		return nil, storageError(err, "LEADERBOARD_NOT_FOUND", "squad has no completed matches", "", "")
	}
	return &lb, nil
}
