package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"ff-tournament-system/models"
	"ff-tournament-system/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSquadsPerRoom is the room capacity used when none is configured.
const DefaultSquadsPerRoom = 12

// AssignRoom buckets the next squad by registration order:
// Room floor(existingSquadCount/capacity)+1.
func AssignRoom(existingSquadCount, capacity int) string {
	if capacity <= 0 {
		capacity = DefaultSquadsPerRoom
	}
	if existingSquadCount < 0 {
		existingSquadCount = 0
	}
	return fmt.Sprintf("Room %d", existingSquadCount/capacity+1)
}

type SquadService struct {
	DB            *gorm.DB
	Hub           *Hub
	Policy        KillPolicy
	SquadsPerRoom int
}

func NewSquadService(db *gorm.DB, hub *Hub, policy KillPolicy, squadsPerRoom int) *SquadService {
	if squadsPerRoom <= 0 {
		squadsPerRoom = DefaultSquadsPerRoom
	}
	return &SquadService{DB: db, Hub: hub, Policy: policy, SquadsPerRoom: squadsPerRoom}
}

type SquadPlayerInput struct {
	PlayerName string `json:"playerName"`
	FFName     string `json:"ffName"`
	FFID       string `json:"ffId"`
}

type RegisterSquadInput struct {
	SquadName string             `json:"squadName"`
	Room      string             `json:"room,omitempty"`
	Players   []SquadPlayerInput `json:"players"`
}

func (in *RegisterSquadInput) normalize() {
	in.SquadName = clean(in.SquadName)
	in.Room = clean(in.Room)
	for i := range in.Players {
		in.Players[i].PlayerName = clean(in.Players[i].PlayerName)
		in.Players[i].FFName = clean(in.Players[i].FFName)
		in.Players[i].FFID = clean(in.Players[i].FFID)
	}
}

func (in RegisterSquadInput) validate() error {
	if in.SquadName == "" {
		return NewValidationError("MISSING_SQUAD_NAME", "squadName is required")
	}
	if len(in.Players) != models.SquadSize {
		return NewValidationError("INVALID_PLAYER_COUNT",
			fmt.Sprintf("a squad needs exactly %d players, got %d", models.SquadSize, len(in.Players)))
	}
	seen := make(map[string]bool, len(in.Players))
	for i, p := range in.Players {
		if p.PlayerName == "" || p.FFName == "" || p.FFID == "" {
			return NewValidationError("MISSING_FIELDS",
				fmt.Sprintf("player %d needs playerName, ffName and ffId", i+1))
		}
		if !validFFID(p.FFID) {
			return NewValidationError("INVALID_FF_ID", fmt.Sprintf("player %d: ffId must be 8 to 12 digits", i+1))
		}
		if seen[p.FFID] {
			return NewValidationError("DUPLICATE_FF_ID", fmt.Sprintf("ffId %s appears more than once in the squad", p.FFID))
		}
		seen[p.FFID] = true
	}
	return nil
}

// RegisterSquad validates and stores a squad. When no room is given the
// squad is bucketed by the number of squads registered before it; the count
// is read under the registration lock so concurrent registrations cannot
// land in the same slot.
func (s *SquadService) RegisterSquad(ctx context.Context, in RegisterSquadInput) (*models.Squad, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	squad := &models.Squad{
		ID:           uuid.NewString(),
		SquadName:    in.SquadName,
		Room:         in.Room,
		RegisteredAt: time.Now().UTC(),
	}
	for i, p := range in.Players {
		squad.Players = append(squad.Players, models.SquadPlayer{
			ID:         uuid.NewString(),
			SquadID:    squad.ID,
			Slot:       i + 1,
			PlayerName: p.PlayerName,
			FFName:     p.FFName,
			FFID:       p.FFID,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lock models.RegistrationLock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lock, "name = ?", models.SquadRegistrationLock).Error; err != nil {
			return err
		}

		var taken int64
		if err := tx.Model(&models.Squad{}).Where("squad_name = ?", squad.SquadName).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return NewConflictError("SQUAD_NAME_TAKEN", "a squad with this name already exists")
		}

		if squad.Room == "" {
			var existing int64
			if err := tx.Model(&models.Squad{}).Count(&existing).Error; err != nil {
				return err
			}
			squad.Room = AssignRoom(int(existing), s.SquadsPerRoom)
		}
		return tx.Create(squad).Error
	})
	if err != nil {
		return nil, storageError(err, "", "", "SQUAD_NAME_TAKEN", "a squad with this name already exists")
	}

	log.Printf("[SQUADS] registered %q in %s", squad.SquadName, squad.Room)
	s.Hub.Publish(EventSquadRegistered, squad)
	return squad, nil
}

func (s *SquadService) GetSquad(ctx context.Context, id string) (*models.Squad, error) {
	var squad models.Squad
	err := s.DB.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("slot ASC") }).
		First(&squad, "id = ?", id).Error
	if err != nil {
		return nil, storageError(err, "SQUAD_NOT_FOUND", "squad not found", "", "")
	}
	return &squad, nil
}

// ListSquads returns squads in registration order with their players.
func (s *SquadService) ListSquads(ctx context.Context) ([]models.Squad, error) {
	var squads []models.Squad
	err := s.DB.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("slot ASC") }).
		Order("registered_at ASC").Order("id ASC").
		Find(&squads).Error
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	return squads, nil
}

// Room is a room label and the squads assigned to it.
type Room struct {
	Name   string         `json:"name"`
	Squads []models.Squad `json:"squads"`
}

// ListRooms groups squads by room. Numbered rooms sort numerically, other
// labels after them alphabetically.
func (s *SquadService) ListRooms(ctx context.Context) ([]Room, error) {
	squads, err := s.ListSquads(ctx)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var rooms []Room
	for _, sq := range squads {
		i, ok := index[sq.Room]
		if !ok {
			i = len(rooms)
			index[sq.Room] = i
			rooms = append(rooms, Room{Name: sq.Room})
		}
		rooms[i].Squads = append(rooms[i].Squads, sq)
	}
	sort.SliceStable(rooms, func(a, b int) bool {
		na, okA := roomNumber(rooms[a].Name)
		nb, okB := roomNumber(rooms[b].Name)
		switch {
		case okA && okB:
			return na < nb
		case okA != okB:
			return okA
		default:
			return rooms[a].Name < rooms[b].Name
		}
	})
	return rooms, nil
}

func roomNumber(label string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(label, "Room %d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// UpdateSquadPlayerKills sets all three maps for one squad member and
// recomputes the squad total in the same transaction.
func (s *SquadService) UpdateSquadPlayerKills(ctx context.Context, squadID, ffID string, map1, map2, map3 any) (*models.Squad, error) {
	ffID = clean(ffID)
	var kills mapKills
	for _, f := range []struct {
		name string
		raw  any
		dst  **int
	}{
		{scoring.Map1, map1, &kills.Map1},
		{scoring.Map2, map2, &kills.Map2},
		{scoring.Map3, map3, &kills.Map3},
	} {
		v, err := s.Policy.Parse(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = &v
	}

	var totals []SquadKillTotal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Squad{}).Where("id = ?", squadID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return NewNotFoundError("SQUAD_NOT_FOUND", "squad not found")
		}
		var err error
		totals, err = applySquadPlayerKills(tx, ffID, squadID, kills)
		if err != nil {
			return err
		}
		if len(totals) == 0 {
			return NewNotFoundError("SQUAD_PLAYER_NOT_FOUND", "no player with this ffId in the squad")
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "", "", "", "")
	}

	squad, err := s.GetSquad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(EventSquadKills, totals)
	return squad, nil
}

// OverrideRoom is the only way to change a squad's room after registration.
func (s *SquadService) OverrideRoom(ctx context.Context, squadID, room string) (*models.Squad, error) {
	room = clean(room)
	if room == "" {
		return nil, NewValidationError("MISSING_ROOM", "room is required")
	}
	res := s.DB.WithContext(ctx).Model(&models.Squad{}).Where("id = ?", squadID).Update("room", room)
	if res.Error != nil {
		return nil, storageError(res.Error, "", "", "", "")
	}
	if res.RowsAffected == 0 {
		return nil, NewNotFoundError("SQUAD_NOT_FOUND", "squad not found")
	}
	log.Printf("[SQUADS] room override %s -> %s", squadID, room)
	return s.GetSquad(ctx, squadID)
}

// DeleteSquad removes the squad, its players and its leaderboard row.
// Squad game states are kept as match history.
func (s *SquadService) DeleteSquad(ctx context.Context, squadID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", squadID).Delete(&models.Squad{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NewNotFoundError("SQUAD_NOT_FOUND", "squad not found")
		}
		if err := tx.Where("squad_id = ?", squadID).Delete(&models.SquadPlayer{}).Error; err != nil {
			return err
		}
		return tx.Where("squad_id = ?", squadID).Delete(&models.SquadLeaderboard{}).Error
	})
	if err != nil {
		return storageError(err, "", "", "", "")
	}
	log.Printf("[SQUADS] deleted %s", squadID)
	s.Hub.Publish(EventSquadDeleted, map[string]string{"squadId": squadID})
	return nil
}
