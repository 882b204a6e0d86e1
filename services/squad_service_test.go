package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ff-tournament-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRoom(t *testing.T) {
	tests := []struct {
		existing, capacity int
		expected           string
	}{
		{0, 12, "Room 1"},
		{11, 12, "Room 1"},
		{12, 12, "Room 2"},
		{23, 12, "Room 2"},
		{24, 12, "Room 3"},
		{5, 0, "Room 1"},
		{-3, 12, "Room 1"},
		{4, 4, "Room 2"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.existing, tt.capacity), func(t *testing.T) {
			assert.Equal(t, tt.expected, AssignRoom(tt.existing, tt.capacity))
		})
	}
}

func TestRegisterSquadRoomsByRegistrationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alpha := mustRegisterSquad(t, env, alphaInput())
	assert.Equal(t, "Room 1", alpha.Room)

	var last *models.Squad
	for i := 0; i < 12; i++ {
		last = mustRegisterSquad(t, env, squadInput(fmt.Sprintf("Squad%02d", i), 50000000+i*10))
		if i < 11 {
			assert.Equal(t, "Room 1", last.Room, "squad %d", i+2)
		}
	}
	assert.Equal(t, "Room 2", last.Room)

	rooms, err := env.squads.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room 1", rooms[0].Name)
	assert.Len(t, rooms[0].Squads, 12)
	assert.Equal(t, "Room 2", rooms[1].Name)
	assert.Len(t, rooms[1].Squads, 1)
}

func TestConcurrentRegistrationAcrossRoomBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		mustRegisterSquad(t, env, squadInput(fmt.Sprintf("Early%02d", i), 20000000+i*10))
	}

	const parallel = 6
	var wg sync.WaitGroup
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.squads.RegisterSquad(ctx, squadInput(fmt.Sprintf("Late%02d", i), 30000000+i*10))
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "registration %d", i)
	}

	rooms, err := env.squads.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room 1", rooms[0].Name)
	assert.Len(t, rooms[0].Squads, DefaultSquadsPerRoom, "room 1 is filled exactly")
	assert.Equal(t, "Room 2", rooms[1].Name)
	assert.Len(t, rooms[1].Squads, 4)
}

func TestRegisterSquadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	in := alphaInput()
	created := mustRegisterSquad(t, env, in)

	fetched, err := env.squads.GetSquad(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", fetched.SquadName)
	assert.Equal(t, "Room 1", fetched.Room)
	require.Len(t, fetched.Players, 4)
	for i, p := range fetched.Players {
		assert.Equal(t, i+1, p.Slot)
		assert.Equal(t, in.Players[i].PlayerName, p.PlayerName)
		assert.Equal(t, in.Players[i].FFName, p.FFName)
		assert.Equal(t, in.Players[i].FFID, p.FFID)
		assert.Zero(t, p.Total)
	}
}

func TestRegisterSquadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	threePlayers := alphaInput()
	threePlayers.Players = threePlayers.Players[:3]

	missingField := alphaInput()
	missingField.Players[2].FFName = "  "

	badFFID := alphaInput()
	badFFID.Players[0].FFID = "12ab"

	dupFFID := alphaInput()
	dupFFID.Players[3].FFID = dupFFID.Players[0].FFID

	noName := alphaInput()
	noName.SquadName = ""

	tests := []struct {
		name string
		in   RegisterSquadInput
		code string
	}{
		{"player count", threePlayers, "INVALID_PLAYER_COUNT"},
		{"missing field", missingField, "MISSING_FIELDS"},
		{"bad ffId", badFFID, "INVALID_FF_ID"},
		{"duplicate ffId", dupFFID, "DUPLICATE_FF_ID"},
		{"missing name", noName, "MISSING_SQUAD_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.squads.RegisterSquad(ctx, tt.in)
			require.True(t, IsValidation(err), "got %v", err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Squad{}).Count(&count).Error)
	assert.Zero(t, count, "failed validation must not persist anything")
}

func TestRegisterSquadDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	mustRegisterSquad(t, env, alphaInput())

	_, err := env.squads.RegisterSquad(context.Background(), squadInput("Alpha", 60000000))
	assert.True(t, IsConflict(err), "got %v", err)
}

func TestSquadKillTotals(t *testing.T) {
	env := newTestEnv(t)
	alpha := mustRegisterSquad(t, env, alphaInput())

	squad := scoreAlpha(t, env, alpha.ID)
	assert.Equal(t, 10, squad.TotalKills)

	totals := map[string]int{}
	for _, p := range squad.Players {
		totals[p.FFID] = p.Total
	}
	assert.Equal(t, map[string]int{"11111111": 3, "22222222": 1, "33333333": 3, "44444444": 3}, totals)
}

func TestUpdateSquadPlayerKillsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alpha := mustRegisterSquad(t, env, alphaInput())

	_, err := env.squads.UpdateSquadPlayerKills(ctx, "missing", "11111111", 1, 1, 1)
	assert.True(t, IsNotFound(err))

	_, err = env.squads.UpdateSquadPlayerKills(ctx, alpha.ID, "99999999", 1, 1, 1)
	assert.True(t, IsNotFound(err))
}

func TestRoomOverrideSticks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alpha := mustRegisterSquad(t, env, alphaInput())

	updated, err := env.squads.OverrideRoom(ctx, alpha.ID, "Finals Lobby")
	require.NoError(t, err)
	assert.Equal(t, "Finals Lobby", updated.Room)

	// Later registrations and kill updates never move it.
	mustRegisterSquad(t, env, squadInput("Bravo", 70000000))
	squad := scoreAlpha(t, env, alpha.ID)
	assert.Equal(t, "Finals Lobby", squad.Room)

	_, err = env.squads.OverrideRoom(ctx, alpha.ID, " ")
	assert.True(t, IsValidation(err))
	_, err = env.squads.OverrideRoom(ctx, "missing", "Room 9")
	assert.True(t, IsNotFound(err))
}

func TestExplicitRoomOnRegistration(t *testing.T) {
	env := newTestEnv(t)
	in := alphaInput()
	in.Room = "Room 7"
	squad := mustRegisterSquad(t, env, in)
	assert.Equal(t, "Room 7", squad.Room)
}

func TestDeleteSquad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alpha := mustRegisterSquad(t, env, alphaInput())

	require.NoError(t, env.squads.DeleteSquad(ctx, alpha.ID))

	_, err := env.squads.GetSquad(ctx, alpha.ID)
	assert.True(t, IsNotFound(err))
	var members int64
	require.NoError(t, env.db.Model(&models.SquadPlayer{}).Count(&members).Error)
	assert.Zero(t, members)

	assert.True(t, IsNotFound(env.squads.DeleteSquad(ctx, alpha.ID)))
}
