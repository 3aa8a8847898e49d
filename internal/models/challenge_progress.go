package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-day format used for progress dates.
const DateLayout = "2006-01-02"

// ChallengeProgress holds one user's task state for one challenge on one day.
type ChallengeProgress struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	ChallengeID    uuid.UUID        `json:"challengeId" gorm:"type:uuid;not null;uniqueIndex:idx_progress_day;index:idx_progress_user;index:idx_progress_date"`
	UserID         uuid.UUID        `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_progress_day;index:idx_progress_user"`
	Date           string           `json:"date" gorm:"size:10;not null;uniqueIndex:idx_progress_day;index:idx_progress_date"`
	CompletedTasks []TaskCompletion `json:"completedTasks" gorm:"serializer:json;not null"`
	TotalScore     int              `json:"totalScore" gorm:"not null;default:0"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (p *ChallengeProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Rescore sets TotalScore to the number of completed entries.
func (p *ChallengeProgress) Rescore() {
	score := 0
	for _, t := range p.CompletedTasks {
		if t.Completed {
			score++
		}
	}
	p.TotalScore = score
}

type TaskCompletion struct {
	TaskIndex int      `json:"taskIndex"`
	Completed bool     `json:"completed"`
	Value     *float64 `json:"value,omitempty"`
}

// Same reports whether two entries record the same state.
func (tc TaskCompletion) Same(other TaskCompletion) bool {
	if tc.TaskIndex != other.TaskIndex || tc.Completed != other.Completed {
		return false
	}
	if tc.Value == nil || other.Value == nil {
		return tc.Value == other.Value
	}
	return *tc.Value == *other.Value
}

// BlankTasks returns n incomplete entries indexed 0..n-1.
func BlankTasks(n int) []TaskCompletion {
	tasks := make([]TaskCompletion, n)
	for i := range tasks {
		tasks[i] = TaskCompletion{TaskIndex: i}
	}
	return tasks
}

type UpdateProgressRequest struct {
	Date      string   `json:"date"`
	TaskIndex *int     `json:"taskIndex"`
	Completed bool     `json:"completed"`
	Value     *float64 `json:"value"`
}

type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     uuid.UUID `json:"userId"`
	UserName   string    `json:"userName"`
	TotalScore int       `json:"totalScore"`
}
