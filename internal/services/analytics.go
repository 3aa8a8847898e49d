package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultWorkoutStatsDays   = 30
	defaultNutritionStatsDays = 7
)

// AnalyticsService computes training and nutrition summaries from the logs. Nothing
// is cached.
type AnalyticsService struct {
	db   *gorm.DB
	opts options
}

func NewAnalyticsService(db *gorm.DB, opts ...Option) *AnalyticsService {
	return &AnalyticsService{db: db, opts: buildOptions(opts)}
}

// WorkoutStats summarises the finished sessions started in the last days days.
// Consistency is workouts per started week, to one decimal.
func (s *AnalyticsService) WorkoutStats(ctx context.Context, userID uuid.UUID, days int) (*models.WorkoutStats, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if days <= 0 {
		days = defaultWorkoutStatsDays
	}
	cutoff := s.opts.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	var sessions []models.WorkoutSession
	if err := s.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where("user_id = ? AND start_time >= ? AND end_time IS NOT NULL", userID, cutoff).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("workout stats: %w", err)
	}

	stats := &models.WorkoutStats{TotalWorkouts: len(sessions)}
	for _, session := range sessions {
		stats.TotalMinutes += int(math.Round(session.EndTime.Sub(session.StartTime).Minutes()))
	}
	weeks := math.Ceil(float64(days) / 7)
	stats.Consistency = math.Round(float64(stats.TotalWorkouts)/weeks*10) / 10
	return stats, nil
}

// NutritionStats averages the logs of the last days calendar days, today included.
// Days without a log are left out of the average.
func (s *AnalyticsService) NutritionStats(ctx context.Context, userID uuid.UUID, days int) (*models.NutritionStats, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if days <= 0 {
		days = defaultNutritionStatsDays
	}
	today := s.opts.now().UTC()
	dates := make([]string, days)
	for i := range dates {
		dates[i] = today.AddDate(0, 0, -i).Format(models.DateLayout)
	}

	var logs []models.NutritionLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date IN ?", userID, dates).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("nutrition stats: %w", err)
	}

	stats := &models.NutritionStats{}
	if len(logs) == 0 {
		return stats, nil
	}
	var calories, protein, carbs, fat float64
	for _, l := range logs {
		calories += l.TotalCalories
		protein += l.TotalMacros.Protein
		carbs += l.TotalMacros.Carbs
		fat += l.TotalMacros.Fat
	}
	n := float64(len(logs))
	stats.AvgCalories = int(math.Round(calories / n))
	stats.AvgProtein = int(math.Round(protein / n))
	stats.AvgCarbs = int(math.Round(carbs / n))
	stats.AvgFat = int(math.Round(fat / n))
	return stats, nil
}

// PersonalRecords finds the heaviest completed set per exercise across finished
// sessions, most recent record first. The earliest session holds a tied record.
func (s *AnalyticsService) PersonalRecords(ctx context.Context, userID uuid.UUID) ([]models.PersonalRecord, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	var sessions []models.WorkoutSession
	if err := db.Where("user_id = ? AND end_time IS NOT NULL", userID).
		Order("start_time ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	best := map[uuid.UUID]models.PersonalRecord{}
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			for _, set := range exercise.Sets {
				if !set.Completed || set.Weight == nil || *set.Weight <= 0 {
					continue
				}
				current, ok := best[exercise.ExerciseID]
				if ok && *set.Weight <= current.Weight {
					continue
				}
				best[exercise.ExerciseID] = models.PersonalRecord{
					ExerciseID: exercise.ExerciseID,
					Weight:     *set.Weight,
					Reps:       set.Reps,
					Date:       session.StartTime,
				}
			}
		}
	}

	records := []models.PersonalRecord{}
	if len(best) == 0 {
		return records, nil
	}

	ids := make([]uuid.UUID, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	var exercises []models.Exercise
	if err := db.Select("id", "name").Where("id IN ?", ids).Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}

	// Records of exercises removed from the catalog are dropped.
	for _, e := range exercises {
		record := best[e.ID]
		record.ExerciseName = e.Name
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ExerciseName < records[j].ExerciseName
	})
	return records, nil
}
