package handlers

import (
	"strconv"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetWorkoutStats(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))

	stats, err := h.Analytics.WorkoutStats(c.UserContext(), middleware.GetUserID(c), days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) GetNutritionStats(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))

	stats, err := h.Analytics.NutritionStats(c.UserContext(), middleware.GetUserID(c), days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) GetPersonalRecords(c *fiber.Ctx) error {
	records, err := h.Analytics.PersonalRecords(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(records)
}
