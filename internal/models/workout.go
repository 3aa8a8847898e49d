package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Exercise is a catalog entry. Difficulty is one of FitnessLevels.
type Exercise struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Category     string    `json:"category" gorm:"not null;index"`
	MuscleGroups []string  `json:"muscleGroups" gorm:"serializer:json"`
	Equipment    *string   `json:"equipment"`
	Instructions []string  `json:"instructions" gorm:"serializer:json"`
	Difficulty   string    `json:"difficulty" gorm:"not null"`
	VideoURL     *string   `json:"videoUrl"`
	ImageURL     *string   `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PlannedExercise is one exercise of a plan. Duration and RestTime are in seconds.
type PlannedExercise struct {
	ExerciseID uuid.UUID `json:"exerciseId"`
	Sets       int       `json:"sets"`
	Reps       *int      `json:"reps,omitempty"`
	Weight     *float64  `json:"weight,omitempty"`
	Duration   *int      `json:"duration,omitempty"`
	RestTime   *int      `json:"restTime,omitempty"`
}

// WorkoutPlan is a reusable template. Plans without a creator are shared by everyone.
type WorkoutPlan struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string            `json:"name" gorm:"not null"`
	Description string            `json:"description"`
	CreatedBy   *uuid.UUID        `json:"createdBy" gorm:"type:uuid;index"`
	Difficulty  string            `json:"difficulty" gorm:"not null"`
	Duration    int               `json:"duration"` // minutes
	Exercises   []PlannedExercise `json:"exercises" gorm:"serializer:json"`
	Tags        []string          `json:"tags" gorm:"serializer:json"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (p *WorkoutPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type WorkoutSet struct {
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Duration  *int     `json:"duration,omitempty"`
	Completed bool     `json:"completed"`
}

type SessionExercise struct {
	ExerciseID uuid.UUID    `json:"exerciseId"`
	Sets       []WorkoutSet `json:"sets"`
}

// WorkoutSession is a logged workout. It is active until EndTime is set.
type WorkoutSession struct {
	ID                  uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID         `json:"userId" gorm:"type:uuid;not null;index:idx_session_user_start"`
	PlanID              *uuid.UUID        `json:"planId" gorm:"type:uuid"`
	Name                string            `json:"name" gorm:"not null"`
	StartTime           time.Time         `json:"startTime" gorm:"not null;index:idx_session_user_start"`
	EndTime             *time.Time        `json:"endTime"`
	Exercises           []SessionExercise `json:"exercises" gorm:"serializer:json"`
	Notes               *string           `json:"notes"`
	TotalCaloriesBurned *float64          `json:"totalCaloriesBurned"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (s *WorkoutSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type CreateWorkoutPlanRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	Duration    int               `json:"duration"`
	Exercises   []PlannedExercise `json:"exercises"`
	Tags        []string          `json:"tags"`
}

type StartWorkoutRequest struct {
	PlanID *uuid.UUID `json:"planId"`
	Name   string     `json:"name"`
}

type UpdateWorkoutRequest struct {
	Exercises           *[]SessionExercise `json:"exercises"`
	EndTime             *time.Time         `json:"endTime"`
	Notes               *string            `json:"notes"`
	TotalCaloriesBurned *float64           `json:"totalCaloriesBurned"`
}

type WorkoutStats struct {
	TotalWorkouts int     `json:"totalWorkouts"`
	TotalMinutes  int     `json:"totalMinutes"`
	Consistency   float64 `json:"consistency"` // finished workouts per week
}

// PersonalRecord is the heaviest completed set logged for an exercise.
type PersonalRecord struct {
	ExerciseID   uuid.UUID `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Weight       float64   `json:"weight"`
	Reps         *int      `json:"reps,omitempty"`
	Date         time.Time `json:"date"`
}
