// Package scoring holds the kill and placement arithmetic used across the
// tournament. Nothing in here touches storage; totals sent by clients are
// never trusted and are always recomputed with these functions.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPlacementRank is the worst rank a squad can finish a match with.
// A battle royale lobby holds at most 50 players.
const MaxPlacementRank = 50

// DefaultKillPoints is the per-kill multiplier used when a match does not set one.
const DefaultKillPoints = 1.0

var ErrInvalidKills = errors.New("kill value is not a number")

// Map field names accepted for per-map kill updates.
const (
	Map1 = "map1"
	Map2 = "map2"
	Map3 = "map3"
)

// MapField validates a map name coming from a request.
func MapField(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Map1:
		return Map1, nil
	case Map2:
		return Map2, nil
	case Map3:
		return Map3, nil
	}
	return "", fmt.Errorf("unknown map %q (expected map1, map2 or map3)", name)
}

// ComputeTotal sums three per-map kill counts. Negative inputs count as zero.
func ComputeTotal(map1, map2, map3 int) int {
	return nonNegative(map1) + nonNegative(map2) + nonNegative(map3)
}

// ParseKills turns a raw kill value from JSON, a form or a spreadsheet cell into
// a non-negative integer. Negative numbers clamp to 0; anything that is not a
// number returns ErrInvalidKills.
func ParseKills(raw any) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, ErrInvalidKills
	case int:
		return nonNegative(v), nil
	case int32:
		return nonNegative(int(v)), nil
	case int64:
		return nonNegative(int(v)), nil
	case float32:
		return parseFloat(float64(v))
	case float64:
		return parseFloat(v)
	case bool:
		return 0, ErrInvalidKills
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, ErrInvalidKills
		}
		if n, err := strconv.Atoi(s); err == nil {
			return nonNegative(n), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrInvalidKills
		}
		return parseFloat(f)
	case fmt.Stringer:
		return ParseKills(v.String())
	}
	return 0, ErrInvalidKills
}

// KillsOrZero is the lenient form of ParseKills: anything unparseable is 0.
func KillsOrZero(raw any) int {
	n, err := ParseKills(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidKills
	}
	return nonNegative(int(f)), nil
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
