package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ff-tournament-system/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLeaderboardSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alpha := mustRegisterSquad(t, env, alphaInput())
	_, err := env.match.StartMatch(ctx, MatchConfig{SquadIDs: []string{alpha.ID}})
	require.NoError(t, err)
	scoreAlpha(t, env, alpha.ID)
	_, err = env.match.SetSquadPlacement(ctx, alpha.ID, 1)
	require.NoError(t, err)

	var key string
	var body []byte
	s := &Scheduler{
		Leaderboard: env.leaderboard,
		Publish: func(_ context.Context, k, contentType string, data []byte) (string, error) {
			assert.Equal(t, "application/json", contentType)
			key, body = k, data
			return "https://cdn.example.com/" + k, nil
		},
	}

	url, err := s.PublishLeaderboardSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "snapshots/leaderboard-"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, "https://cdn.example.com/"+key, url)

	var snap LeaderboardSnapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	require.Len(t, snap.Squads, 1)
	assert.Equal(t, "Alpha", snap.Squads[0].SquadName)
	assert.Equal(t, 20.0, snap.Squads[0].TotalPoints)
}

func TestSchedulerSweepUploads(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, utils.StagePrefix+"stale.xlsx")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	s := &Scheduler{TmpDir: dir, SweepInterval: time.Hour}
	s.SweepUploads()
	assert.NoFileExists(t, stale)
}
