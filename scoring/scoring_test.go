package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name             string
		map1, map2, map3 int
		expected         int
	}{
		{"all zero", 0, 0, 0, 0},
		{"simple sum", 2, 1, 0, 3},
		{"large", 40, 33, 27, 100},
		{"negatives count as zero", -5, 3, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeTotal(tt.map1, tt.map2, tt.map3))
		})
	}
}

func TestComputeTotalMatchesSum(t *testing.T) {
	for a := 0; a < 6; a++ {
		for b := 0; b < 6; b++ {
			for c := 0; c < 6; c++ {
				require.Equal(t, a+b+c, ComputeTotal(a, b, c))
			}
		}
	}
}

func TestParseKills(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected int
		wantErr  bool
	}{
		{"int", 4, 4, false},
		{"int64", int64(7), 7, false},
		{"float truncates", 3.9, 3, false},
		{"json number", json.Number("5"), 5, false},
		{"numeric string", " 12 ", 12, false},
		{"float string", "2.5", 2, false},
		{"negative clamps", -3, 0, false},
		{"negative string clamps", "-8", 0, false},
		{"letters", "abc", 0, true},
		{"empty string", "", 0, true},
		{"nil", nil, 0, true},
		{"bool", true, 0, true},
		{"NaN", math.NaN(), 0, true},
		{"Inf", math.Inf(1), 0, true},
		{"struct", struct{}{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKills(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKills)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestKillsOrZero(t *testing.T) {
	assert.Equal(t, 0, KillsOrZero("abc"))
	assert.Equal(t, 0, KillsOrZero(nil))
	assert.Equal(t, 6, KillsOrZero("6"))
}

func TestMapField(t *testing.T) {
	for _, in := range []string{"map1", "MAP2", " map3 "} {
		_, err := MapField(in)
		assert.NoError(t, err, in)
	}
	_, err := MapField("map4")
	assert.Error(t, err)
}

func TestPlacementPoints(t *testing.T) {
	expected := map[int]float64{1: 10, 2: 6, 3: 5, 4: 4, 5: 3, 6: 2, 7: 1, 8: 1}
	for rank := 1; rank <= 16; rank++ {
		assert.Equal(t, expected[rank], PlacementPoints(rank), "rank %d", rank)
	}
	for _, rank := range []int{-1, 0, 17, 50, 1000} {
		assert.Zero(t, PlacementPoints(rank), "rank %d", rank)
	}
}

func TestCustomTableDomain(t *testing.T) {
	table := PointsTable{1: 15, 2: 12, 12: 1}
	assert.Equal(t, 15.0, table.For(1))
	assert.Equal(t, 1.0, table.For(12))
	assert.Zero(t, table.For(3))
	assert.Zero(t, table.For(13))
	assert.Zero(t, table.ForPlacement(nil))
	assert.Equal(t, []int{1, 2, 12}, table.Ranks())
}

func TestSquadPoints(t *testing.T) {
	first := 1
	twelfth := 12

	// Alpha: 10 kills, 1st place, default table and multiplier.
	assert.Equal(t, 20.0, SquadPoints(10, &first, nil, DefaultKillPoints))
	assert.Equal(t, 10.0, SquadPoints(10, nil, nil, DefaultKillPoints))
	assert.Equal(t, 0.0, SquadPoints(0, &twelfth, DefaultPointsTable, 1))

	custom := PointsTable{1: 12, 12: 1}
	assert.Equal(t, 12.0+5*1.5, SquadPoints(5, &first, custom, 1.5))
	assert.Equal(t, 1.0, SquadPoints(0, &twelfth, custom, 2))
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, ValidateTable(DefaultPointsTable))
	require.NoError(t, ValidateTable(PointsTable{}))
	require.Error(t, ValidateTable(PointsTable{0: 1}))
	require.Error(t, ValidateTable(PointsTable{MaxPlacementRank + 1: 1}))
	require.Error(t, ValidateTable(PointsTable{1: -1}))
	require.Error(t, ValidateTable(PointsTable{1: math.NaN()}))
}

func TestValidateKillPoints(t *testing.T) {
	require.NoError(t, ValidateKillPoints(0))
	require.NoError(t, ValidateKillPoints(2.5))
	require.Error(t, ValidateKillPoints(-1))
	require.Error(t, ValidateKillPoints(math.Inf(1)))
}

func TestCloneIsIndependent(t *testing.T) {
	clone := DefaultPointsTable.Clone()
	clone[1] = 99
	assert.Equal(t, 10.0, DefaultPointsTable[1])
}
