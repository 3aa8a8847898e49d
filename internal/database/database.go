package database

import (
	"strings"

	"github.com/arnold/fitchallenge-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the store named by databaseURL. URLs starting with postgres select
// PostgreSQL, anything else is treated as a SQLite DSN.
func Connect(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if strings.HasPrefix(databaseURL, "postgres") {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.WeightEntry{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.ChallengeProgress{},
		&models.ChallengeInvitation{},
		&models.ChallengeActivity{},
		&models.Notification{},
		&models.Exercise{},
		&models.WorkoutPlan{},
		&models.WorkoutSession{},
		&models.Food{},
		&models.NutritionLog{},
	)
}

// LogLevel maps the LOG_LEVEL setting onto GORM's logger levels. SQL statements are
// only echoed at debug.
func LogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
