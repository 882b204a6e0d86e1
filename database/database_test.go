package database

import (
	"testing"

	"ff-tournament-system/config"
	"ff-tournament-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
}

func TestOpenMigratesAndSeedsLock(t *testing.T) {
	db, err := Open(openMemory(t))
	require.NoError(t, err)

	var lock models.RegistrationLock
	require.NoError(t, db.First(&lock, "name = ?", models.SquadRegistrationLock).Error)

	// Migrating twice is harmless and does not duplicate the lock row.
	require.NoError(t, Migrate(db))
	var count int64
	require.NoError(t, db.Model(&models.RegistrationLock{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSingleActiveGameStateIndex(t *testing.T) {
	db, err := Open(openMemory(t))
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.GameState{ID: uuid.NewString(), Active: true, MatchNumber: 1}).Error)
	require.NoError(t, db.Create(&models.GameState{ID: uuid.NewString(), Active: false, MatchNumber: 2}).Error)
	require.NoError(t, db.Create(&models.GameState{ID: uuid.NewString(), Active: false, MatchNumber: 3}).Error)

	err = db.Create(&models.GameState{ID: uuid.NewString(), Active: true, MatchNumber: 4}).Error
	require.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
}
