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
	"gorm.io/gorm/clause"
)

const (
	minFoodQuery   = 2
	foodQueryLimit = 20
)

// NutritionService owns the food database and the daily nutrition logs.
type NutritionService struct {
	db   *gorm.DB
	opts options
}

func NewNutritionService(db *gorm.DB, opts ...Option) *NutritionService {
	return &NutritionService{db: db, opts: buildOptions(opts)}
}

// SearchFoods matches foods whose name starts with query. Queries shorter than two
// characters match nothing.
func (s *NutritionService) SearchFoods(ctx context.Context, query string) ([]models.Food, error) {
	foods := []models.Food{}
	if len(query) < minFoodQuery {
		return foods, nil
	}
	if err := s.db.WithContext(ctx).
		Where("name >= ? AND name < ?", query, query+"\uffff").
		Order("name ASC").
		Limit(foodQueryLimit).
		Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}
	return foods, nil
}

func (s *NutritionService) FoodByBarcode(ctx context.Context, barcode string) (*models.Food, error) {
	var food models.Food
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFoodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load food: %w", err)
	}
	return &food, nil
}

// AddFood stores a user-submitted food. Submitted foods are never verified.
func (s *NutritionService) AddFood(ctx context.Context, userID uuid.UUID, req models.AddFoodRequest) (*models.Food, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.ServingSize) == "" {
		return nil, invalid("Name and serving size are required")
	}
	m := req.Macros
	if req.CaloriesPerServing < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return nil, invalid("Nutrition values cannot be negative")
	}

	food := models.Food{
		Name:               name,
		Brand:              req.Brand,
		Barcode:            req.Barcode,
		CaloriesPerServing: req.CaloriesPerServing,
		ServingSize:        req.ServingSize,
		Macros:             req.Macros,
	}
	if err := s.db.WithContext(ctx).Create(&food).Error; err != nil {
		return nil, fmt.Errorf("add food: %w", err)
	}
	return &food, nil
}

// Today returns the user's log for the current UTC day, or nil.
func (s *NutritionService) Today(ctx context.Context, userID uuid.UUID) (*models.NutritionLog, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	var log models.NutritionLog
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, s.opts.today()).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load nutrition log: %w", err)
	}
	return &log, nil
}

// LogMeal adds foods to a meal of the day's log and adds their calories and macros to
// the day's totals. Foods logged to a meal type already present join that meal.
// Unknown foods are kept in the meal but count for nothing.
func (s *NutritionService) LogMeal(ctx context.Context, userID uuid.UUID, req models.LogMealRequest) (*models.NutritionLog, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !validDate(req.Date) {
		return nil, invalid("Date must be formatted as YYYY-MM-DD")
	}
	if !slices.Contains(models.MealTypes, req.MealType) {
		return nil, invalid("Invalid meal type")
	}
	if len(req.Foods) == 0 {
		return nil, invalid("At least one food is required")
	}
	for _, f := range req.Foods {
		if f.Quantity <= 0 {
			return nil, invalid("Quantity must be positive")
		}
	}

	var log *models.NutritionLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		calories, macros, err := mealTotals(tx, req.Foods)
		if err != nil {
			return err
		}

		log, err = lockDayLog(tx, userID, req.Date)
		if err != nil {
			return err
		}
		log.Meals = addToMeal(log.Meals, req.MealType, req.Foods)
		log.TotalCalories += calories
		log.TotalMacros.Protein += macros.Protein
		log.TotalMacros.Carbs += macros.Carbs
		log.TotalMacros.Fat += macros.Fat
		return saveDayLog(tx, log)
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// UpdateWaterIntake adds amount ml to the day's water intake.
func (s *NutritionService) UpdateWaterIntake(ctx context.Context, userID uuid.UUID, req models.WaterIntakeRequest) (*models.NutritionLog, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !validDate(req.Date) {
		return nil, invalid("Date must be formatted as YYYY-MM-DD")
	}
	if req.Amount <= 0 {
		return nil, invalid("Amount must be positive")
	}

	var log *models.NutritionLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		log, err = lockDayLog(tx, userID, req.Date)
		if err != nil {
			return err
		}
		log.WaterIntake += req.Amount
		return saveDayLog(tx, log)
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// lockDayLog loads the day's log for update, or returns an unsaved empty one.
func lockDayLog(tx *gorm.DB, userID uuid.UUID, date string) (*models.NutritionLog, error) {
	var log models.NutritionLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date = ?", userID, date).
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NutritionLog{UserID: userID, Date: date, Meals: []models.Meal{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load nutrition log: %w", err)
	}
	return &log, nil
}

func saveDayLog(tx *gorm.DB, log *models.NutritionLog) error {
	if log.ID == uuid.Nil {
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("create nutrition log: %w", err)
		}
		return nil
	}
	if err := tx.Save(log).Error; err != nil {
		return fmt.Errorf("update nutrition log: %w", err)
	}
	return nil
}

func mealTotals(tx *gorm.DB, portions []models.FoodPortion) (float64, models.MacroTotals, error) {
	ids := make([]uuid.UUID, len(portions))
	for i, p := range portions {
		ids[i] = p.FoodID
	}
	var foods []models.Food
	if err := tx.Where("id IN ?", ids).Find(&foods).Error; err != nil {
		return 0, models.MacroTotals{}, fmt.Errorf("load foods: %w", err)
	}
	byID := make(map[uuid.UUID]models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	var calories float64
	var macros models.MacroTotals
	for _, p := range portions {
		food, ok := byID[p.FoodID]
		if !ok {
			continue
		}
		calories += food.CaloriesPerServing * p.Quantity
		macros.Protein += food.Macros.Protein * p.Quantity
		macros.Carbs += food.Macros.Carbs * p.Quantity
		macros.Fat += food.Macros.Fat * p.Quantity
	}
	return calories, macros, nil
}

func addToMeal(meals []models.Meal, mealType string, portions []models.FoodPortion) []models.Meal {
	for i := range meals {
		if meals[i].Type == mealType {
			meals[i].Foods = append(meals[i].Foods, portions...)
			return meals
		}
	}
	return append(meals, models.Meal{Type: mealType, Foods: portions})
}
