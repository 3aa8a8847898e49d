package database

import (
	"testing"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, LogLevel("debug"))
	assert.Equal(t, logger.Error, LogLevel("error"))
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Warn, LogLevel("info"))
	assert.Equal(t, logger.Warn, LogLevel(""))
}

func TestMigrateEnforcesUniqueKeys(t *testing.T) {
	db, err := Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))

	challengeID, userID := uuid.New(), uuid.New()
	day := func() *models.ChallengeProgress {
		return &models.ChallengeProgress{
			ChallengeID:    challengeID,
			UserID:         userID,
			Date:           "2024-01-01",
			CompletedTasks: models.BlankTasks(1),
		}
	}
	require.NoError(t, db.Create(day()).Error)
	assert.ErrorIs(t, db.Create(day()).Error, gorm.ErrDuplicatedKey)

	code := func() *models.Challenge {
		return &models.Challenge{Name: "x", CreatedBy: userID, InviteCode: "ABC123", DailyTasks: []models.DailyTask{}}
	}
	require.NoError(t, db.Create(code()).Error)
	assert.ErrorIs(t, db.Create(code()).Error, gorm.ErrDuplicatedKey)
}
