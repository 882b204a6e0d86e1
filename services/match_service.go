package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"ff-tournament-system/models"
	"ff-tournament-system/scoring"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchService drives the match lifecycle:
//
//	IDLE --StartMatch--> ACTIVE --EndMatch/ResetMatch--> IDLE
//
// and, per squad, PENDING --CompleteSquadMatch--> COMPLETED.
//
// The partial unique index on game_states.active guarantees a single active
// match across processes; mu serialises transitions inside this one so a
// losing caller gets a Conflict instead of a storage lock error.
type MatchService struct {
	DB          *gorm.DB
	Hub         *Hub
	Leaderboard *LeaderboardService

	// Shuffle is used to build random teams. Tests replace it.
	Shuffle func(n int, swap func(i, j int))

	mu sync.Mutex
}

func NewMatchService(db *gorm.DB, hub *Hub, leaderboard *LeaderboardService) *MatchService {
	return &MatchService{DB: db, Hub: hub, Leaderboard: leaderboard, Shuffle: rand.Shuffle}
}

// MatchConfig is the organiser's scoring blueprint for one match.
type MatchConfig struct {
	KillPoints      *float64            `json:"killPoints"`
	PlacementPoints scoring.PointsTable `json:"placementPoints"`
	MatchNumber     int                 `json:"matchNumber"`
	SquadIDs        []string            `json:"squadIds"`
}

func (c MatchConfig) validate() error {
	if c.KillPoints != nil {
		if err := scoring.ValidateKillPoints(*c.KillPoints); err != nil {
			return NewValidationError("INVALID_KILL_POINTS", err.Error())
		}
	}
	if err := scoring.ValidateTable(c.PlacementPoints); err != nil {
		return NewValidationError("INVALID_PLACEMENT_TABLE", err.Error())
	}
	if c.MatchNumber < 0 {
		return NewValidationError("INVALID_MATCH_NUMBER", "matchNumber must not be negative")
	}
	return nil
}

// StartMatch creates the active game state and a pending squad game state
// for every listed squad. It fails with a Conflict when a match is running.
func (s *MatchService) StartMatch(ctx context.Context, cfg MatchConfig) (*models.GameState, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	killPoints := scoring.DefaultKillPoints
	if cfg.KillPoints != nil {
		killPoints = *cfg.KillPoints
	}
	table := cfg.PlacementPoints.OrDefault().Clone()

	gs := &models.GameState{
		ID:                 uuid.NewString(),
		Active:             true,
		KillPoints:         killPoints,
		PlacementPoints:    datatypes.NewJSONType(table),
		RandomTeams:        datatypes.NewJSONType([][]models.TeamMember{}),
		SelectedTopPlayers: datatypes.NewJSONType([]string{}),
		MatchNumber:        cfg.MatchNumber,
		StartTime:          now,
		LastUpdated:        now,
	}

	var created []models.SquadGameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.GameState{}).Where("active = ?", true).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return errMatchAlreadyActive
		}

		if gs.MatchNumber == 0 {
			next, err := nextMatchNumber(tx)
			if err != nil {
				return err
			}
			gs.MatchNumber = next
		}
		if err := tx.Create(gs).Error; err != nil {
			if isUniqueViolation(err) {
				return errMatchAlreadyActive
			}
			return err
		}

		seen := map[string]bool{}
		for _, squadID := range cfg.SquadIDs {
			if seen[squadID] {
				continue
			}
			seen[squadID] = true
			sgs, err := createSquadGameState(tx, gs, squadID, now)
			if err != nil {
				return err
			}
			created = append(created, *sgs)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	log.Printf("[MATCH] match %d started with %d squads (kill points %.2f)", gs.MatchNumber, len(created), gs.KillPoints)
	s.Hub.Publish(EventMatchStarted, map[string]any{"gameState": gs, "squads": created})
	return gs, nil
}

var errMatchAlreadyActive = NewConflictError("MATCH_ALREADY_ACTIVE", "a match is already active")

func nextMatchNumber(tx *gorm.DB) (int, error) {
	var maxGame, maxSquad int
	if err := tx.Model(&models.GameState{}).Select("COALESCE(MAX(match_number), 0)").Scan(&maxGame).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.SquadGameState{}).Select("COALESCE(MAX(match_number), 0)").Scan(&maxSquad).Error; err != nil {
		return 0, err
	}
	if maxSquad > maxGame {
		maxGame = maxSquad
	}
	return maxGame + 1, nil
}

func createSquadGameState(tx *gorm.DB, gs *models.GameState, squadID string, now time.Time) (*models.SquadGameState, error) {
	var squad models.Squad
	err := tx.Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("slot ASC") }).
		First(&squad, "id = ?", squadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("SQUAD_NOT_FOUND", fmt.Sprintf("squad %s not found", squadID))
	}
	if err != nil {
		return nil, err
	}

	players := make([]models.MatchPlayerStats, 0, len(squad.Players))
	for _, p := range squad.Players {
		players = append(players, models.MatchPlayerStats{
			PlayerID:     p.ID,
			PlayerName:   p.PlayerName,
			FFName:       p.FFName,
			FFID:         p.FFID,
			KillsAtStart: p.Total,
		})
	}

	sgs := &models.SquadGameState{
		ID:          uuid.NewString(),
		GameStateID: gs.ID,
		SquadID:     squad.ID,
		SquadName:   squad.SquadName,
		MatchNumber: gs.MatchNumber,
		Players:     datatypes.NewJSONType(players),
		StartTime:   now,
		IsActive:    true,
	}
	if err := tx.Create(sgs).Error; err != nil {
		return nil, err
	}
	return sgs, nil
}

// ActiveState returns the running match.
func (s *MatchService) ActiveState(ctx context.Context) (*models.GameState, error) {
	var gs models.GameState
	if err := s.DB.WithContext(ctx).First(&gs, "active = ?", true).Error; err != nil {
		return nil, storageError(err, "NO_ACTIVE_MATCH", "no match is active", "", "")
	}
	return &gs, nil
}

// BeginSquadMatch adds a squad to the running match.
func (s *MatchService) BeginSquadMatch(ctx context.Context, squadID string) (*models.SquadGameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sgs *models.SquadGameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gs models.GameState
		if err := tx.First(&gs, "active = ?", true).Error; err != nil {
			return storageError(err, "NO_ACTIVE_MATCH", "no match is active", "", "")
		}
		var pending int64
		if err := tx.Model(&models.SquadGameState{}).
			Where("game_state_id = ? AND squad_id = ? AND is_active = ?", gs.ID, squadID, true).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return NewConflictError("SQUAD_ALREADY_IN_MATCH", "squad is already playing this match")
		}
		var err error
		sgs, err = createSquadGameState(tx, &gs, squadID, time.Now().UTC())
		if err != nil {
			return err
		}
		return touchActiveGameState(tx)
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return sgs, nil
}

// PlayerStatsInput is a partial update of one player's match line. Kills are
// not part of it: they are the roster kills gained since the match started.
type PlayerStatsInput struct {
	Assists  *int  `json:"assists"`
	Damage   *int  `json:"damage"`
	Survived *bool `json:"survived"`
	Revives  *int  `json:"revives"`
}

// RecordPlayerStats updates one player's line on a pending squad game state
// and refreshes its kills from the roster.
func (s *MatchService) RecordPlayerStats(ctx context.Context, sgsID, ffID string, in PlayerStatsInput) (*models.SquadGameState, error) {
	ffID = clean(ffID)
	var sgs models.SquadGameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sgs, "id = ?", sgsID).Error; err != nil {
			return storageError(err, "SQUAD_MATCH_NOT_FOUND", "squad game state not found", "", "")
		}
		if !sgs.IsActive {
			return NewConflictError("SQUAD_MATCH_NOT_ACTIVE", "squad game state is already completed")
		}

		players := sgs.Players.Data()
		found := false
		for i := range players {
			if players[i].FFID != ffID {
				continue
			}
			found = true
			p := &players[i]
			if in.Assists != nil {
				p.Assists = nonNegative(*in.Assists)
			}
			if in.Damage != nil {
				p.Damage = nonNegative(*in.Damage)
			}
			if in.Revives != nil {
				p.Revives = nonNegative(*in.Revives)
			}
			if in.Survived != nil {
				p.Survived = *in.Survived
			}
		}
		if !found {
			return NewNotFoundError("SQUAD_PLAYER_NOT_FOUND", "no player with this ffId in the squad game state")
		}
		sgs.Players = datatypes.NewJSONType(players)
		if err := syncRosterKills(tx, &sgs); err != nil {
			return err
		}
		if err := tx.Save(&sgs).Error; err != nil {
			return err
		}
		return touchActiveGameState(tx)
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	s.Hub.Publish(EventSquadKills, &sgs)
	return &sgs, nil
}

// syncRosterKills credits each match line with the kills its player gained on
// the squad roster since the line was created, then recomputes TotalKills.
// Roster corrections below the starting total credit 0. When the squad has
// been deleted the recorded lines are kept as they are.
func syncRosterKills(tx *gorm.DB, sgs *models.SquadGameState) error {
	var roster []models.SquadPlayer
	if err := tx.Where("squad_id = ?", sgs.SquadID).Find(&roster).Error; err != nil {
		return err
	}
	players := sgs.Players.Data()
	if len(roster) > 0 {
		totals := make(map[string]int, len(roster))
		for _, m := range roster {
			totals[m.FFID] = m.Total
		}
		for i := range players {
			if total, ok := totals[players[i].FFID]; ok {
				players[i].Kills = nonNegative(total - players[i].KillsAtStart)
			}
		}
		sgs.Players = datatypes.NewJSONType(players)
	}
	sgs.TotalKills = sumKills(players)
	return nil
}

func sumKills(players []models.MatchPlayerStats) int {
	total := 0
	for _, p := range players {
		total += nonNegative(p.Kills)
	}
	return total
}

func validateRank(rank int) error {
	if rank < 1 || rank > scoring.MaxPlacementRank {
		return NewValidationError("INVALID_PLACEMENT", fmt.Sprintf("placement must be between 1 and %d", scoring.MaxPlacementRank))
	}
	return nil
}

// CompleteSquadMatch records a pending squad's placement, scores it with the
// match's configuration, marks it completed and updates the leaderboard.
func (s *MatchService) CompleteSquadMatch(ctx context.Context, sgsID string, rank int) (*models.SquadGameState, error) {
	if err := validateRank(rank); err != nil {
		return nil, err
	}

	var sgs models.SquadGameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sgs, "id = ?", sgsID).Error; err != nil {
			return storageError(err, "SQUAD_MATCH_NOT_FOUND", "squad game state not found", "", "")
		}
		return s.complete(tx, &sgs, rank)
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	log.Printf("[MATCH] %s finished #%d in match %d: %d kills, %.2f points",
		sgs.SquadName, rank, sgs.MatchNumber, sgs.TotalKills, sgs.SquadPoints)
	s.Hub.Publish(EventMatchSquadCompleted, &sgs)
	return &sgs, nil
}

func (s *MatchService) complete(tx *gorm.DB, sgs *models.SquadGameState, rank int) error {
	if !sgs.IsActive {
		return NewConflictError("SQUAD_MATCH_NOT_ACTIVE", "squad game state is already completed")
	}

	table := scoring.DefaultPointsTable
	killPoints := scoring.DefaultKillPoints
	var gs models.GameState
	err := tx.First(&gs, "id = ?", sgs.GameStateID).Error
	switch {
	case err == nil:
		table = gs.ScoringTable()
		killPoints = gs.KillPoints
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return err
	}

	if err := syncRosterKills(tx, sgs); err != nil {
		return err
	}

	now := time.Now().UTC()
	placement := rank
	sgs.SquadPlacement = &placement
	sgs.PlacementPoints = table.For(rank)
	sgs.SquadPoints = scoring.SquadPoints(sgs.TotalKills, &placement, table, killPoints)
	sgs.IsActive = false
	sgs.IsCompleted = true
	sgs.EndTime = &now
	if err := tx.Save(sgs).Error; err != nil {
		return err
	}

	if _, err := s.Leaderboard.ApplyMatchResult(tx, sgs); err != nil {
		return err
	}
	return touchActiveGameState(tx)
}

// SetSquadPlacement completes a squad by squad game state id or, failing
// that, by squad id (its pending state in the latest match).
func (s *MatchService) SetSquadPlacement(ctx context.Context, id string, rank int) (*models.SquadGameState, error) {
	if err := validateRank(rank); err != nil {
		return nil, err
	}

	var sgs models.SquadGameState
	db := s.DB.WithContext(ctx)
	err := db.First(&sgs, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("squad_id = ? AND is_active = ?", id, true).
			Order("match_number DESC").Order("start_time DESC").
			First(&sgs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("SQUAD_MATCH_NOT_FOUND", "no pending match for this squad")
		}
	}
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return s.CompleteSquadMatch(ctx, sgs.ID, rank)
}

// EndMatch deactivates the running match. Pending squad game states are
// left as they are.
func (s *MatchService) EndMatch(ctx context.Context) (*models.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gs models.GameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gs, "active = ?", true).Error; err != nil {
			return storageError(err, "NO_ACTIVE_MATCH", "no match is active", "", "")
		}
		now := time.Now().UTC()
		gs.Active = false
		gs.EndTime = &now
		gs.LastUpdated = now
		return tx.Save(&gs).Error
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	log.Printf("[MATCH] match %d ended", gs.MatchNumber)
	s.Hub.Publish(EventMatchEnded, &gs)
	return &gs, nil
}

// FinishResult reports what FinishMatch did.
type FinishResult struct {
	GameState *models.GameState       `json:"gameState"`
	Completed []models.SquadGameState `json:"completed"`
	Failed    map[string]string       `json:"failed"`
	Pending   []models.SquadGameState `json:"pending"`
}

// FinishMatch completes every entry in placements (keyed by squad game state
// id or squad id), then ends the match. Squads without a placement stay pending.
func (s *MatchService) FinishMatch(ctx context.Context, placements map[string]int) (*FinishResult, error) {
	for id, rank := range placements {
		if rank < 1 || rank > scoring.MaxPlacementRank {
			return nil, NewValidationError("INVALID_PLACEMENT",
				fmt.Sprintf("%s: placement must be between 1 and %d", id, scoring.MaxPlacementRank))
		}
	}
	active, err := s.ActiveState(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(placements))
	for id := range placements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &FinishResult{Failed: map[string]string{}}
	for _, id := range ids {
		sgs, err := s.SetSquadPlacement(ctx, id, placements[id])
		if err != nil {
			if KindOf(err) == KindServer {
				return nil, err
			}
			result.Failed[id] = err.Error()
			continue
		}
		result.Completed = append(result.Completed, *sgs)
	}

	gs, err := s.EndMatch(ctx)
	if err != nil {
		return nil, err
	}
	result.GameState = gs

	if err := s.DB.WithContext(ctx).
		Where("game_state_id = ? AND is_active = ?", active.ID, true).
		Find(&result.Pending).Error; err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	if len(result.Pending) > 0 {
		log.Printf("[MATCH] match %d ended with %d squads still pending", gs.MatchNumber, len(result.Pending))
	}
	return result, nil
}

// ResetResult counts what ResetMatch removed.
type ResetResult struct {
	GameStates    int64 `json:"gameStates"`
	PendingSquads int64 `json:"pendingSquads"`
}

// ResetMatch removes every game state and every pending squad game state.
// Completed squad history stays. Calling it with nothing to clear is a no-op.
func (s *MatchService) ResetMatch(ctx context.Context) (*ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ResetResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("is_active = ?", true).Delete(&models.SquadGameState{})
		if res.Error != nil {
			return res.Error
		}
		result.PendingSquads = res.RowsAffected

		res = tx.Where("1 = 1").Delete(&models.GameState{})
		if res.Error != nil {
			return res.Error
		}
		result.GameStates = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	if result.GameStates > 0 || result.PendingSquads > 0 {
		log.Printf("[MATCH] reset: removed %d game states, %d pending squads", result.GameStates, result.PendingSquads)
		s.Hub.Publish(EventMatchReset, result)
	}
	return result, nil
}

// ListSquadStates returns squad game states for matchNumber, or for the
// active match when matchNumber is 0, or for every match when none is active.
func (s *MatchService) ListSquadStates(ctx context.Context, matchNumber int) ([]models.SquadGameState, error) {
	q := s.DB.WithContext(ctx)
	switch {
	case matchNumber > 0:
		q = q.Where("match_number = ?", matchNumber)
	default:
		var gs models.GameState
		err := s.DB.WithContext(ctx).First(&gs, "active = ?", true).Error
		if err == nil {
			q = q.Where("game_state_id = ?", gs.ID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storageError(err, "", "", "", "")
		}
	}
	var states []models.SquadGameState
	if err := q.Order("match_number DESC").Order("squad_points DESC").Order("squad_name ASC").
		Find(&states).Error; err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return states, nil
}

// mutateActive loads the active game state under lock, refuses when teams are
// locked (unless allowLocked), applies fn and saves.
func (s *MatchService) mutateActive(ctx context.Context, allowLocked bool, fn func(tx *gorm.DB, gs *models.GameState) error) (*models.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gs models.GameState
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gs, "active = ?", true).Error; err != nil {
			return storageError(err, "NO_ACTIVE_MATCH", "no match is active", "", "")
		}
		if gs.TeamsLocked && !allowLocked {
			return NewConflictError("TEAMS_LOCKED", "teams are locked for this match")
		}
		if err := fn(tx, &gs); err != nil {
			return err
		}
		gs.LastUpdated = time.Now().UTC()
		return tx.Save(&gs).Error
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	s.Hub.Publish(EventTeamsUpdated, &gs)
	return &gs, nil
}

// SelectTopPlayers stores the ffIds that random teams are drawn from.
func (s *MatchService) SelectTopPlayers(ctx context.Context, ffIDs []string) (*models.GameState, error) {
	ids := make([]string, 0, len(ffIDs))
	seen := map[string]bool{}
	for _, id := range ffIDs {
		id = clean(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return s.mutateActive(ctx, false, func(tx *gorm.DB, gs *models.GameState) error {
		if len(ids) > 0 {
			var known []string
			if err := tx.Model(&models.Player{}).Where("ff_id IN ?", ids).Pluck("ff_id", &known).Error; err != nil {
				return err
			}
			if len(known) != len(ids) {
				have := map[string]bool{}
				for _, k := range known {
					have[k] = true
				}
				var missing []string
				for _, id := range ids {
					if !have[id] {
						missing = append(missing, id)
					}
				}
				return NewValidationError("UNKNOWN_PLAYERS", fmt.Sprintf("unknown ffIds: %v", missing))
			}
		}
		gs.SelectedTopPlayers = datatypes.NewJSONType(ids)
		return nil
	})
}

// GenerateRandomTeams shuffles the selected top players (or every registered
// player when none are selected) into teams of teamSize.
func (s *MatchService) GenerateRandomTeams(ctx context.Context, teamSize int) (*models.GameState, error) {
	if teamSize <= 0 {
		teamSize = models.SquadSize
	}
	return s.mutateActive(ctx, false, func(tx *gorm.DB, gs *models.GameState) error {
		var players []models.Player
		q := tx.Order("timestamp ASC")
		if selected := gs.SelectedTopPlayers.Data(); len(selected) > 0 {
			q = q.Where("ff_id IN ?", selected)
		}
		if err := q.Find(&players).Error; err != nil {
			return err
		}
		if len(players) == 0 {
			return NewValidationError("NO_PLAYERS", "there are no players to build teams from")
		}

		s.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

		var teams [][]models.TeamMember
		for start := 0; start < len(players); start += teamSize {
			end := min(start+teamSize, len(players))
			team := make([]models.TeamMember, 0, end-start)
			for _, p := range players[start:end] {
				team = append(team, models.TeamMember{
					PlayerID:   p.ID,
					PlayerName: p.PlayerName,
					FFName:     p.FFName,
					FFID:       p.FFID,
				})
			}
			teams = append(teams, team)
		}
		gs.RandomTeams = datatypes.NewJSONType(teams)
		log.Printf("[MATCH] generated %d random teams from %d players", len(teams), len(players))
		return nil
	})
}

// LockTeams freezes (or unfreezes) the random teams of the running match.
func (s *MatchService) LockTeams(ctx context.Context, locked bool) (*models.GameState, error) {
	return s.mutateActive(ctx, true, func(tx *gorm.DB, gs *models.GameState) error {
		gs.TeamsLocked = locked
		return nil
	})
}
