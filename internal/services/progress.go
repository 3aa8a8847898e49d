package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService keeps per-user, per-day task completion records.
type ProgressService struct {
	db   *gorm.DB
	opts options
}

func NewProgressService(db *gorm.DB, opts ...Option) *ProgressService {
	return &ProgressService{db: db, opts: buildOptions(opts)}
}

// TaskUpdate sets one task of one day's record.
type TaskUpdate struct {
	ChallengeID uuid.UUID
	Date        string
	TaskIndex   int
	Completed   bool
	Value       *float64
}

// UpsertTask overwrites the entry at TaskIndex of the requester's record for Date,
// creating the record sized to the challenge's task list when it does not exist yet.
// Repeating a call leaves the stored record unchanged.
func (s *ProgressService) UpsertTask(ctx context.Context, requester uuid.UUID, upd TaskUpdate) (*models.ChallengeProgress, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !validDate(upd.Date) {
		return nil, invalid("Date must be formatted as YYYY-MM-DD")
	}
	if upd.TaskIndex < 0 {
		return nil, invalid("Task index out of range")
	}

	var progress *models.ChallengeProgress
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		progress, err = s.upsert(ctx, requester, upd)
		// Two first toggles of the same day race on the unique index; the loser
		// retries against the winner's record.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return progress, err
}

func (s *ProgressService) upsert(ctx context.Context, requester uuid.UUID, upd TaskUpdate) (*models.ChallengeProgress, error) {
	var result models.ChallengeProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ChallengeProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("challenge_id = ? AND user_id = ? AND date = ?", upd.ChallengeID, requester, upd.Date).
			First(&existing).Error

		switch {
		case err == nil:
			if upd.TaskIndex >= len(existing.CompletedTasks) {
				return invalid("Task index out of range")
			}
			entry := models.TaskCompletion{
				TaskIndex: upd.TaskIndex,
				Completed: upd.Completed,
				Value:     upd.Value,
			}
			if existing.CompletedTasks[upd.TaskIndex].Same(entry) {
				result = existing
				return nil
			}
			wasCompleted := existing.CompletedTasks[upd.TaskIndex].Completed
			existing.CompletedTasks[upd.TaskIndex] = entry
			existing.Rescore()

			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("update progress: %w", err)
			}
			result = existing
			if upd.Completed && !wasCompleted {
				return logTaskCompleted(tx, &existing, upd.TaskIndex)
			}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			var ch models.Challenge
			if err := tx.Select("id", "daily_tasks").First(&ch, "id = ?", upd.ChallengeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrChallengeNotFound
				}
				return fmt.Errorf("load challenge: %w", err)
			}
			if upd.TaskIndex >= len(ch.DailyTasks) {
				return invalid("Task index out of range")
			}

			tasks := models.BlankTasks(len(ch.DailyTasks))
			tasks[upd.TaskIndex].Completed = upd.Completed
			tasks[upd.TaskIndex].Value = upd.Value
			created := models.ChallengeProgress{
				ChallengeID:    upd.ChallengeID,
				UserID:         requester,
				Date:           upd.Date,
				CompletedTasks: tasks,
			}
			created.Rescore()

			if err := tx.Create(&created).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
				return fmt.Errorf("create progress: %w", err)
			}
			result = created
			if upd.Completed {
				return logTaskCompleted(tx, &created, upd.TaskIndex)
			}
			return nil

		default:
			return fmt.Errorf("find progress: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func logTaskCompleted(tx *gorm.DB, p *models.ChallengeProgress, taskIndex int) error {
	return logActivity(tx, p.ChallengeID, p.UserID, models.ActivityTaskCompleted, &p.ID, map[string]interface{}{
		"taskIndex": taskIndex,
		"date":      p.Date,
	})
}

// Today returns the requester's record for the current UTC day, or nil when the
// first toggle of the day has not happened yet.
func (s *ProgressService) Today(ctx context.Context, challengeID, requester uuid.UUID) (*models.ChallengeProgress, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var progress models.ChallengeProgress
	err := s.db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ? AND date = ?", challengeID, requester, s.opts.today()).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return &progress, nil
}

// History returns all of the requester's records for a challenge, oldest day first.
func (s *ProgressService) History(ctx context.Context, challengeID, requester uuid.UUID) ([]models.ChallengeProgress, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	records := []models.ChallengeProgress{}
	if err := s.db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, requester).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return records, nil
}

func validDate(date string) bool {
	t, err := time.Parse(models.DateLayout, date)
	return err == nil && t.Format(models.DateLayout) == date
}
