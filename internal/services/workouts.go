package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSessionLimit = 10

// WorkoutService owns the exercise catalog, workout plans and logged sessions.
type WorkoutService struct {
	db   *gorm.DB
	opts options
}

func NewWorkoutService(db *gorm.DB, opts ...Option) *WorkoutService {
	return &WorkoutService{db: db, opts: buildOptions(opts)}
}

// ListExercises filters the catalog by category and difficulty. Empty filters match all.
func (s *WorkoutService) ListExercises(ctx context.Context, category, difficulty string) ([]models.Exercise, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}

	exercises := []models.Exercise{}
	if err := q.Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

func (s *WorkoutService) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var exercise models.Exercise
	err := s.db.WithContext(ctx).First(&exercise, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	return &exercise, nil
}

func (s *WorkoutService) CreatePlan(ctx context.Context, userID uuid.UUID, req models.CreateWorkoutPlanRequest) (*models.WorkoutPlan, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("Plan name is required")
	}
	if !slices.Contains(models.FitnessLevels, req.Difficulty) {
		return nil, invalid("Invalid difficulty")
	}
	if req.Duration <= 0 {
		return nil, invalid("Duration must be positive")
	}
	if len(req.Exercises) == 0 {
		return nil, invalid("At least one exercise is required")
	}
	for _, e := range req.Exercises {
		if e.Sets <= 0 {
			return nil, invalid("Sets must be positive")
		}
	}

	plan := models.WorkoutPlan{
		Name:        name,
		Description: req.Description,
		CreatedBy:   &userID,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
		Exercises:   req.Exercises,
		Tags:        req.Tags,
	}
	if plan.Tags == nil {
		plan.Tags = []string{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireExercises(tx, req.Exercises); err != nil {
			return err
		}
		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// requireExercises fails with Invalid unless every referenced exercise exists.
func requireExercises(tx *gorm.DB, planned []models.PlannedExercise) error {
	ids := make([]uuid.UUID, 0, len(planned))
	for _, e := range planned {
		if !slices.Contains(ids, e.ExerciseID) {
			ids = append(ids, e.ExerciseID)
		}
	}

	var n int64
	if err := tx.Model(&models.Exercise{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return fmt.Errorf("check exercises: %w", err)
	}
	if int(n) != len(ids) {
		return invalid("Unknown exercise in plan")
	}
	return nil
}

// ListPlans returns the shared plans and the user's own.
func (s *WorkoutService) ListPlans(ctx context.Context, userID uuid.UUID) ([]models.WorkoutPlan, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	plans := []models.WorkoutPlan{}
	if err := s.db.WithContext(ctx).
		Where("created_by IS NULL OR created_by = ?", userID).
		Order("created_at ASC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// StartSession opens a session at the current time. With a plan, every planned set is
// laid out incomplete with the plan's targets.
func (s *WorkoutService) StartSession(ctx context.Context, userID uuid.UUID, req models.StartWorkoutRequest) (*models.WorkoutSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("Workout name is required")
	}

	db := s.db.WithContext(ctx)
	session := models.WorkoutSession{
		UserID:    userID,
		PlanID:    req.PlanID,
		Name:      name,
		StartTime: s.opts.now().UTC(),
		Exercises: []models.SessionExercise{},
	}

	if req.PlanID != nil {
		var plan models.WorkoutPlan
		err := db.Where("id = ? AND (created_by IS NULL OR created_by = ?)", *req.PlanID, userID).First(&plan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkoutPlanNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		session.Exercises = expandPlan(plan.Exercises)
	}

	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("start workout: %w", err)
	}
	return &session, nil
}

func expandPlan(planned []models.PlannedExercise) []models.SessionExercise {
	out := make([]models.SessionExercise, len(planned))
	for i, p := range planned {
		sets := make([]models.WorkoutSet, p.Sets)
		for j := range sets {
			sets[j] = models.WorkoutSet{Reps: p.Reps, Weight: p.Weight, Duration: p.Duration}
		}
		out[i] = models.SessionExercise{ExerciseID: p.ExerciseID, Sets: sets}
	}
	return out
}

// UpdateSession patches the fields present in req on one of the user's sessions.
// Setting EndTime finishes the session.
func (s *WorkoutService) UpdateSession(ctx context.Context, userID, sessionID uuid.UUID, req models.UpdateWorkoutRequest) (*models.WorkoutSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var session models.WorkoutSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("load workout: %w", err)
		}

		if req.Exercises != nil {
			session.Exercises = *req.Exercises
		}
		if req.EndTime != nil {
			end := req.EndTime.UTC()
			if end.Before(session.StartTime) {
				return invalid("Workout cannot end before it started")
			}
			session.EndTime = &end
		}
		if req.Notes != nil {
			session.Notes = req.Notes
		}
		if req.TotalCaloriesBurned != nil {
			if *req.TotalCaloriesBurned < 0 {
				return invalid("Calories burned cannot be negative")
			}
			session.TotalCaloriesBurned = req.TotalCaloriesBurned
		}

		if err := tx.Save(&session).Error; err != nil {
			return fmt.Errorf("update workout: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the user's latest sessions, newest first.
func (s *WorkoutService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultSessionLimit
	}

	sessions := []models.WorkoutSession{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return sessions, nil
}

// ActiveSession returns the most recently started unfinished session, or nil.
func (s *WorkoutService) ActiveSession(ctx context.Context, userID uuid.UUID) (*models.WorkoutSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	var session models.WorkoutSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active workout: %w", err)
	}
	return &session, nil
}
