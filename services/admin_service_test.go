package services

import (
	"context"
	"testing"

	"ff-tournament-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAllData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerPlayer(t, env, "Asha", "12345678")
	alpha := mustRegisterSquad(t, env, alphaInput())
	_, err := env.match.StartMatch(ctx, MatchConfig{SquadIDs: []string{alpha.ID}})
	require.NoError(t, err)
	_, err = env.match.SetSquadPlacement(ctx, alpha.ID, 1)
	require.NoError(t, err)
	_, err = env.conductors.Create(ctx, ConductorInput{Name: "Meera", Phone: "9876543210", Role: "referee"})
	require.NoError(t, err)

	events, unsubscribe := env.hub.Subscribe()
	defer unsubscribe()

	first, err := env.admin.DeleteAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, &WipeResult{Players: 1, SquadPlayers: 4, Squads: 1, Leaderboards: 1}, first)

	ev := <-events
	assert.Equal(t, EventDataWiped, ev.Type)

	second, err := env.admin.DeleteAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, &WipeResult{}, second)

	var conductors int64
	require.NoError(t, env.db.Model(&models.Conductor{}).Count(&conductors).Error)
	assert.Equal(t, int64(1), conductors, "staff are not part of the wipe")

	// Registration works again from Room 1.
	squad := mustRegisterSquad(t, env, alphaInput())
	assert.Equal(t, "Room 1", squad.Room)
}
