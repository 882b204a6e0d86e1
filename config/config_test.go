package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("SQUADS_PER_ROOM", "")
	t.Setenv("STRICT_KILL_INPUT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("LEADERBOARD_SNAPSHOT_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Tournament.SquadsPerRoom)
	assert.False(t, cfg.Tournament.StrictKillInput)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Uploads.SweepInterval)
	assert.Zero(t, cfg.Uploads.LeaderboardSnapshotInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQUADS_PER_ROOM", "8")
	t.Setenv("STRICT_KILL_INPUT", "true")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example,,")
	t.Setenv("TMP_SWEEP_INTERVAL", "2m")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "tournament.db", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.Tournament.SquadsPerRoom)
	assert.True(t, cfg.Tournament.StrictKillInput)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Uploads.SweepInterval)
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("SQUADS_PER_ROOM", "twelve")
	t.Setenv("STRICT_KILL_INPUT", "maybe")
	t.Setenv("TMP_SWEEP_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 12, cfg.Tournament.SquadsPerRoom)
	assert.False(t, cfg.Tournament.StrictKillInput)
	assert.Equal(t, 15*time.Minute, cfg.Uploads.SweepInterval)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database:   DatabaseConfig{Driver: DriverPostgres},
		Tournament: TournamentConfig{SquadsPerRoom: 0},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TOKEN")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "SQUADS_PER_ROOM")

	cfg = &Config{
		AdminToken: "secret",
		Database:   DatabaseConfig{Driver: "mysql"},
		Tournament: TournamentConfig{SquadsPerRoom: 12},
	}
	require.ErrorContains(t, cfg.Validate(), "mysql")

	cfg.Database = DatabaseConfig{Driver: DriverSQLite, DSN: "file::memory:"}
	require.NoError(t, cfg.Validate())
}

func TestR2Enabled(t *testing.T) {
	assert.False(t, R2Config{}.Enabled())
	assert.True(t, R2Config{AccountID: "a", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "b"}.Enabled())
	assert.False(t, R2Config{AccountID: "a", AccessKeyID: "k", AccessKeySecret: "s"}.Enabled())
}

func TestKillFeedConfig(t *testing.T) {
	t.Setenv("KILL_FEED_URL", "")
	t.Setenv("KILL_FEED_POLL_INTERVAL", "")
	cfg := Load()
	assert.False(t, cfg.KillFeed.Enabled())
	assert.Equal(t, 30*time.Second, cfg.KillFeed.PollInterval)

	t.Setenv("KILL_FEED_URL", "https://feed.example/kills")
	t.Setenv("KILL_FEED_POLL_INTERVAL", "5m")
	t.Setenv("KILL_FEED_INTERVAL", "0s")
	cfg = Load()
	assert.True(t, cfg.KillFeed.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.KillFeed.PollInterval)
}

func TestValidateKillFeedInterval(t *testing.T) {
	base := Config{
		AdminToken: "secret",
		Database:   DatabaseConfig{Driver: DriverSQLite, DSN: "file::memory:"},
		Tournament: TournamentConfig{SquadsPerRoom: 12},
	}

	for _, interval := range []time.Duration{0, -time.Second} {
		cfg := base
		cfg.KillFeed = KillFeedConfig{URL: "https://feed.example/kills", PollInterval: interval}
		require.ErrorContains(t, cfg.Validate(), "KILL_FEED_POLL_INTERVAL", "interval %s", interval)
	}

	cfg := base
	cfg.KillFeed = KillFeedConfig{PollInterval: 0}
	require.NoError(t, cfg.Validate(), "a disabled feed needs no interval")

	cfg.KillFeed = KillFeedConfig{URL: "https://feed.example/kills", PollInterval: time.Second}
	require.NoError(t, cfg.Validate())
}
