package handlers

import (
	"strconv"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetProfile renders null for users who never saved a profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.Profiles.Get(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profile)
}

func (h *Handler) UpsertProfile(c *fiber.Ctx) error {
	var req models.UpsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.Profiles.Upsert(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profile)
}

func (h *Handler) LogWeight(c *fiber.Ctx) error {
	var req models.LogWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.Profiles.LogWeight(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetWeightProgress returns ?days= days of weight entries, 30 by default.
func (h *Handler) GetWeightProgress(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))

	entries, err := h.Profiles.WeightProgress(c.UserContext(), middleware.GetUserID(c), days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}
