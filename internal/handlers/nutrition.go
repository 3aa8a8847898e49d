package handlers

import (
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) SearchFoods(c *fiber.Ctx) error {
	foods, err := h.Nutrition.SearchFoods(c.UserContext(), c.Query("q"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(foods)
}

func (h *Handler) GetFoodByBarcode(c *fiber.Ctx) error {
	food, err := h.Nutrition.FoodByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(food)
}

func (h *Handler) AddFood(c *fiber.Ctx) error {
	var req models.AddFoodRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	food, err := h.Nutrition.AddFood(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(food)
}

func (h *Handler) GetTodayNutrition(c *fiber.Ctx) error {
	log, err := h.Nutrition.Today(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(log)
}

func (h *Handler) LogMeal(c *fiber.Ctx) error {
	var req models.LogMealRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	log, err := h.Nutrition.LogMeal(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(log)
}

func (h *Handler) UpdateWaterIntake(c *fiber.Ctx) error {
	var req models.WaterIntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	log, err := h.Nutrition.UpdateWaterIntake(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(log)
}
