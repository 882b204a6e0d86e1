package scoring

import (
	"fmt"
	"math"
	"sort"
)

// PointsTable maps a final placement rank to the points it awards.
type PointsTable map[int]float64

// DefaultPointsTable is used whenever a match was started without an
// organiser-defined table. Ranks 9 to 16 are listed explicitly at 0.
var DefaultPointsTable = PointsTable{
	1: 10, 2: 6, 3: 5, 4: 4, 5: 3, 6: 2, 7: 1, 8: 1,
	9: 0, 10: 0, 11: 0, 12: 0, 13: 0, 14: 0, 15: 0, 16: 0,
}

// PlacementPoints looks rank up in the default table.
func PlacementPoints(rank int) float64 {
	return DefaultPointsTable.For(rank)
}

// For returns the points for rank, or 0 when the rank is not in the table.
func (t PointsTable) For(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return t[rank]
}

// ForPlacement is For with an optional rank; a missing placement scores 0.
func (t PointsTable) ForPlacement(rank *int) float64 {
	if rank == nil {
		return 0
	}
	return t.For(*rank)
}

// OrDefault returns t, or the default table when t is empty.
func (t PointsTable) OrDefault() PointsTable {
	if len(t) == 0 {
		return DefaultPointsTable
	}
	return t
}

// Clone returns an independent copy of the table.
func (t PointsTable) Clone() PointsTable {
	out := make(PointsTable, len(t))
	for rank, pts := range t {
		out[rank] = pts
	}
	return out
}

// Ranks returns the ranks present in the table in ascending order.
func (t PointsTable) Ranks() []int {
	ranks := make([]int, 0, len(t))
	for rank := range t {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	return ranks
}

// ValidateTable checks an organiser-supplied table.
func ValidateTable(t PointsTable) error {
	for rank, pts := range t {
		if rank < 1 || rank > MaxPlacementRank {
			return fmt.Errorf("placement rank %d is outside 1..%d", rank, MaxPlacementRank)
		}
		if math.IsNaN(pts) || math.IsInf(pts, 0) || pts < 0 {
			return fmt.Errorf("placement rank %d has invalid points %v", rank, pts)
		}
	}
	return nil
}

// ValidateKillPoints checks a per-kill multiplier.
func ValidateKillPoints(multiplier float64) error {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier < 0 {
		return fmt.Errorf("kill points %v must be a non-negative number", multiplier)
	}
	return nil
}

// SquadPoints is placement points from table plus totalKills times the
// kill multiplier. An empty table falls back to DefaultPointsTable.
func SquadPoints(totalKills int, rank *int, table PointsTable, killPointMultiplier float64) float64 {
	return table.OrDefault().ForPlacement(rank) + float64(nonNegative(totalKills))*killPointMultiplier
}
