package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// Macros are grams per serving.
type Macros struct {
	Protein float64  `json:"protein"`
	Carbs   float64  `json:"carbs"`
	Fat     float64  `json:"fat"`
	Fiber   *float64 `json:"fiber,omitempty"`
	Sugar   *float64 `json:"sugar,omitempty"`
}

type Food struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name               string    `json:"name" gorm:"not null;index"`
	Brand              *string   `json:"brand"`
	Barcode            *string   `json:"barcode" gorm:"index"`
	CaloriesPerServing float64   `json:"caloriesPerServing"`
	ServingSize        string    `json:"servingSize" gorm:"not null"`
	Macros             Macros    `json:"macros" gorm:"serializer:json"`
	Verified           bool      `json:"verified" gorm:"default:false"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FoodPortion is Quantity servings of a food.
type FoodPortion struct {
	FoodID   uuid.UUID `json:"foodId"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
}

type Meal struct {
	Type  string        `json:"type"`
	Foods []FoodPortion `json:"foods"`
}

type MacroTotals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// NutritionLog is one user's intake for one calendar day. Water is in ml.
type NutritionLog struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID   `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_nutrition_user_date"`
	Date          string      `json:"date" gorm:"not null;uniqueIndex:idx_nutrition_user_date"`
	Meals         []Meal      `json:"meals" gorm:"serializer:json"`
	WaterIntake   float64     `json:"waterIntake"`
	TotalCalories float64     `json:"totalCalories"`
	TotalMacros   MacroTotals `json:"totalMacros" gorm:"serializer:json"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (n *NutritionLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type AddFoodRequest struct {
	Name               string  `json:"name"`
	Brand              *string `json:"brand"`
	Barcode            *string `json:"barcode"`
	CaloriesPerServing float64 `json:"caloriesPerServing"`
	ServingSize        string  `json:"servingSize"`
	Macros             Macros  `json:"macros"`
}

type LogMealRequest struct {
	Date     string        `json:"date"`
	MealType string        `json:"mealType"`
	Foods    []FoodPortion `json:"foods"`
}

type WaterIntakeRequest struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// NutritionStats are daily averages over the days that have a log, rounded.
type NutritionStats struct {
	AvgCalories int `json:"avgCalories"`
	AvgProtein  int `json:"avgProtein"`
	AvgCarbs    int `json:"avgCarbs"`
	AvgFat      int `json:"avgFat"`
}
