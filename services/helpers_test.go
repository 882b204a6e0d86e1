package services

import (
	"context"
	"fmt"
	"testing"

	"ff-tournament-system/config"
	"ff-tournament-system/database"
	"ff-tournament-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	db          *gorm.DB
	hub         *Hub
	players     *PlayerService
	squads      *SquadService
	leaderboard *LeaderboardService
	match       *MatchService
	conductors  *ConductorService
	transfer    *TransferService
	admin       *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	hub := NewHub()
	lb := NewLeaderboardService(db)
	conductors := NewConductorService(db)
	return &testEnv{
		db:          db,
		hub:         hub,
		players:     NewPlayerService(db, hub, KillPolicy{}),
		squads:      NewSquadService(db, hub, KillPolicy{}, DefaultSquadsPerRoom),
		leaderboard: lb,
		match:       NewMatchService(db, hub, lb),
		conductors:  conductors,
		transfer:    NewTransferService(db, conductors, nil),
		admin:       NewAdminService(db, hub),
	}
}

// squadInput builds a valid squad whose ffIds start at base.
func squadInput(name string, base int) RegisterSquadInput {
	in := RegisterSquadInput{SquadName: name}
	for i := 0; i < models.SquadSize; i++ {
		in.Players = append(in.Players, SquadPlayerInput{
			PlayerName: fmt.Sprintf("%s player %d", name, i+1),
			FFName:     fmt.Sprintf("%s_p%d", name, i+1),
			FFID:       fmt.Sprintf("%08d", base+i),
		})
	}
	return in
}

// alphaInput is the "Alpha" squad with ffIds 11111111..44444444.
func alphaInput() RegisterSquadInput {
	in := RegisterSquadInput{SquadName: "Alpha"}
	for i, id := range []string{"11111111", "22222222", "33333333", "44444444"} {
		in.Players = append(in.Players, SquadPlayerInput{
			PlayerName: fmt.Sprintf("p%d", i+1),
			FFName:     fmt.Sprintf("ff_p%d", i+1),
			FFID:       id,
		})
	}
	return in
}

func mustRegisterSquad(t *testing.T, env *testEnv, in RegisterSquadInput) *models.Squad {
	t.Helper()
	squad, err := env.squads.RegisterSquad(context.Background(), in)
	require.NoError(t, err)
	return squad
}

// scoreAlpha enters the per-map kills (2,1,0),(0,0,1),(3,0,0),(1,1,1).
func scoreAlpha(t *testing.T, env *testEnv, squadID string) *models.Squad {
	t.Helper()
	kills := map[string][3]int{
		"11111111": {2, 1, 0},
		"22222222": {0, 0, 1},
		"33333333": {3, 0, 0},
		"44444444": {1, 1, 1},
	}
	var squad *models.Squad
	for ffID, k := range kills {
		var err error
		squad, err = env.squads.UpdateSquadPlayerKills(context.Background(), squadID, ffID, k[0], k[1], k[2])
		require.NoError(t, err)
	}
	return squad
}
