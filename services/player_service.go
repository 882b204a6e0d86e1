package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ff-tournament-system/models"
	"ff-tournament-system/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB     *gorm.DB
	Hub    *Hub
	Policy KillPolicy
}

func NewPlayerService(db *gorm.DB, hub *Hub, policy KillPolicy) *PlayerService {
	return &PlayerService{DB: db, Hub: hub, Policy: policy}
}

type RegisterPlayerInput struct {
	PlayerName string `json:"playerName"`
	FFName     string `json:"ffName"`
	FFID       string `json:"ffId"`
}

func (in *RegisterPlayerInput) normalize() {
	in.PlayerName = clean(in.PlayerName)
	in.FFName = clean(in.FFName)
	in.FFID = clean(in.FFID)
}

func (in RegisterPlayerInput) validate() error {
	if in.PlayerName == "" || in.FFName == "" || in.FFID == "" {
		return NewValidationError("MISSING_FIELDS", "playerName, ffName and ffId are required")
	}
	if !validFFID(in.FFID) {
		return NewValidationError("INVALID_FF_ID", "ffId must be 8 to 12 digits")
	}
	return nil
}

// RegisterPlayer creates a solo player. ffId is unique across all players.
func (s *PlayerService) RegisterPlayer(ctx context.Context, in RegisterPlayerInput) (*models.Player, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	player := &models.Player{
		ID:         uuid.NewString(),
		PlayerName: in.PlayerName,
		FFName:     in.FFName,
		FFID:       in.FFID,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(player).Error; err != nil {
		return nil, storageError(err, "", "", "FF_ID_TAKEN", "a player with this ffId is already registered")
	}
	log.Printf("[PLAYERS] registered %s (%s)", player.FFName, player.FFID)
	return player, nil
}

// ListPlayers returns every player, by total kills when byTotal is set and
// in registration order otherwise.
func (s *PlayerService) ListPlayers(ctx context.Context, byTotal bool) ([]models.Player, error) {
	q := s.DB.WithContext(ctx)
	if byTotal {
		q = q.Order("total DESC").Order("timestamp ASC")
	} else {
		q = q.Order("timestamp ASC")
	}
	var players []models.Player
	if err := q.Find(&players).Error; err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return players, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, ffID string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.WithContext(ctx).First(&player, "ff_id = ?", clean(ffID)).Error; err != nil {
		return nil, storageError(err, "PLAYER_NOT_FOUND", "player not found", "", "")
	}
	return &player, nil
}

func (s *PlayerService) DeletePlayer(ctx context.Context, ffID string) error {
	res := s.DB.WithContext(ctx).Where("ff_id = ?", clean(ffID)).Delete(&models.Player{})
	if res.Error != nil {
		return storageError(res.Error, "", "", "", "")
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError("PLAYER_NOT_FOUND", "player not found")
	}
	log.Printf("[PLAYERS] deleted %s", ffID)
	return nil
}

// KillUpdateResult is what a kill update changed.
type KillUpdateResult struct {
	FFID   string           `json:"ffId"`
	Map    string           `json:"map"`
	Value  int              `json:"value"`
	Player *models.Player   `json:"player,omitempty"`
	Squads []SquadKillTotal `json:"squads"`
}

// UpdatePlayerKills sets one map's kill count for ffID, recomputes the
// player's total and, for every squad the player is in, the squad's total.
// Everything happens in one transaction.
func (s *PlayerService) UpdatePlayerKills(ctx context.Context, ffID, mapName string, raw any) (*KillUpdateResult, error) {
	ffID = clean(ffID)
	field, err := scoring.MapField(mapName)
	if err != nil {
		return nil, NewValidationError("INVALID_MAP", err.Error())
	}
	value, err := s.Policy.Parse(field, raw)
	if err != nil {
		return nil, err
	}

	result := &KillUpdateResult{FFID: ffID, Map: field, Value: value}
	kills := singleMap(field, value)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		player, err := applyPlayerKills(tx, ffID, kills)
		if err != nil {
			return err
		}
		result.Player = player

		squads, err := applySquadPlayerKills(tx, ffID, "", kills)
		if err != nil {
			return err
		}
		result.Squads = squads

		if player == nil && len(squads) == 0 {
			return NewNotFoundError("PLAYER_NOT_FOUND", "no player or squad member with this ffId")
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	s.Hub.Publish(EventPlayerKills, result)
	return result, nil
}

// KillSync is one row of a bulk kill sync. Values may be numbers or strings.
type KillSync struct {
	FFID string `json:"ffId"`
	Map1 any    `json:"map1"`
	Map2 any    `json:"map2"`
	Map3 any    `json:"map3"`
}

type SyncResult struct {
	Updated []string `json:"updated"`
	Unknown []string `json:"unknown"`
}

// SyncPlayerKills applies a batch of per-map kill values. Unknown ffIds are
// reported rather than failing the batch. A running match has its
// LastUpdated refreshed.
func (s *PlayerService) SyncPlayerKills(ctx context.Context, rows []KillSync) (*SyncResult, error) {
	if len(rows) == 0 {
		return nil, NewValidationError("EMPTY_SYNC", "no players to sync")
	}

	type parsed struct {
		ffID  string
		kills mapKills
	}
	batch := make([]parsed, 0, len(rows))
	for _, row := range rows {
		ffID := clean(row.FFID)
		if ffID == "" {
			return nil, NewValidationError("MISSING_FF_ID", "every sync row needs an ffId")
		}
		var k mapKills
		for _, f := range []struct {
			name string
			raw  any
			dst  **int
		}{
			{scoring.Map1, row.Map1, &k.Map1},
			{scoring.Map2, row.Map2, &k.Map2},
			{scoring.Map3, row.Map3, &k.Map3},
		} {
			if f.raw == nil {
				continue
			}
			v, err := s.Policy.Parse(f.name, f.raw)
			if err != nil {
				return nil, err
			}
			*f.dst = &v
		}
		batch = append(batch, parsed{ffID: ffID, kills: k})
	}

	result := &SyncResult{Updated: []string{}, Unknown: []string{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range batch {
			player, err := applyPlayerKills(tx, p.ffID, p.kills)
			if err != nil {
				return err
			}
			squads, err := applySquadPlayerKills(tx, p.ffID, "", p.kills)
			if err != nil {
				return err
			}
			if player == nil && len(squads) == 0 {
				result.Unknown = append(result.Unknown, p.ffID)
				continue
			}
			result.Updated = append(result.Updated, p.ffID)
		}
		return touchActiveGameState(tx)
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	log.Printf("[PLAYERS] synced kills: %d updated, %d unknown", len(result.Updated), len(result.Unknown))
	s.Hub.Publish(EventPlayerKills, result)
	return result, nil
}

// applyPlayerKills updates the solo player record for ffID, if there is one.
func applyPlayerKills(tx *gorm.DB, ffID string, kills mapKills) (*models.Player, error) {
	var player models.Player
	err := tx.First(&player, "ff_id = ?", ffID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	player.Total = kills.apply(&player.Map1, &player.Map2, &player.Map3)
	if err := tx.Model(&player).Updates(map[string]any{
		"map1": player.Map1, "map2": player.Map2, "map3": player.Map3, "total": player.Total,
	}).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// touchActiveGameState bumps LastUpdated on the running match, if any.
func touchActiveGameState(tx *gorm.DB) error {
	return tx.Model(&models.GameState{}).
		Where("active = ?", true).
		Update("last_updated", time.Now().UTC()).Error
}
