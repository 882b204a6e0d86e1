package services

import (
	"fmt"

	"ff-tournament-system/models"
	"ff-tournament-system/scoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KillPolicy decides what happens to kill input that is not a number.
// Lenient (the default) stores 0; Strict rejects it with a validation error.
type KillPolicy struct {
	Strict bool
}

func (p KillPolicy) Parse(field string, raw any) (int, error) {
	n, err := scoring.ParseKills(raw)
	if err == nil {
		return n, nil
	}
	if p.Strict {
		return 0, NewValidationError("INVALID_KILLS", fmt.Sprintf("%s must be a non-negative integer", field))
	}
	return 0, nil
}

// mapKills is a partial set of per-map kill values; nil means "leave unchanged".
type mapKills struct {
	Map1, Map2, Map3 *int
}

func singleMap(field string, value int) mapKills {
	switch field {
	case scoring.Map1:
		return mapKills{Map1: &value}
	case scoring.Map2:
		return mapKills{Map2: &value}
	default:
		return mapKills{Map3: &value}
	}
}

func (k mapKills) apply(m1, m2, m3 *int) int {
	if k.Map1 != nil {
		*m1 = nonNegative(*k.Map1)
	}
	if k.Map2 != nil {
		*m2 = nonNegative(*k.Map2)
	}
	if k.Map3 != nil {
		*m3 = nonNegative(*k.Map3)
	}
	return scoring.ComputeTotal(*m1, *m2, *m3)
}

// SquadKillTotal reports a squad whose total changed because of a kill update.
type SquadKillTotal struct {
	SquadID     string `json:"squadId"`
	SquadName   string `json:"squadName"`
	PlayerTotal int    `json:"playerTotal"`
	TotalKills  int    `json:"totalKills"`
}

// applySquadPlayerKills updates every squad player with ffID (optionally
// restricted to one squad) and recomputes the affected squads' totals. The
// squad rows are locked first so concurrent updates to teammates serialise.
func applySquadPlayerKills(tx *gorm.DB, ffID, squadID string, kills mapKills) ([]SquadKillTotal, error) {
	q := tx.Where("ff_id = ?", ffID)
	if squadID != "" {
		q = q.Where("squad_id = ?", squadID)
	}
	var members []models.SquadPlayer
	if err := q.Find(&members).Error; err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	squadIDs := make([]string, 0, len(members))
	for _, m := range members {
		squadIDs = append(squadIDs, m.SquadID)
	}
	var squads []models.Squad
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", squadIDs).
		Order("id").
		Find(&squads).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Squad, len(squads))
	for i := range squads {
		byID[squads[i].ID] = &squads[i]
	}

	totals := make([]SquadKillTotal, 0, len(members))
	for i := range members {
		m := &members[i]
		m.Total = kills.apply(&m.Map1, &m.Map2, &m.Map3)
		if err := tx.Model(m).Updates(map[string]any{
			"map1": m.Map1, "map2": m.Map2, "map3": m.Map3, "total": m.Total,
		}).Error; err != nil {
			return nil, err
		}
		total, err := recomputeSquadTotal(tx, m.SquadID)
		if err != nil {
			return nil, err
		}
		name := ""
		if sq, ok := byID[m.SquadID]; ok {
			name = sq.SquadName
		}
		totals = append(totals, SquadKillTotal{
			SquadID:     m.SquadID,
			SquadName:   name,
			PlayerTotal: m.Total,
			TotalKills:  total,
		})
	}
	return totals, nil
}

// recomputeSquadTotal stores the sum of the squad's player totals on the squad.
func recomputeSquadTotal(tx *gorm.DB, squadID string) (int, error) {
	var total int
	if err := tx.Model(&models.SquadPlayer{}).
		Where("squad_id = ?", squadID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Squad{}).
		Where("id = ?", squadID).
		Update("total_kills", total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
