package handlers

import (
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UpdateProgress sets one task of the requester's record for the given day.
func (h *Handler) UpdateProgress(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	var req models.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.TaskIndex == nil {
		return badRequest(c, "Task index is required")
	}

	progress, err := h.Progress.UpsertTask(c.UserContext(), userID, services.TaskUpdate{
		ChallengeID: challengeID,
		Date:        req.Date,
		TaskIndex:   *req.TaskIndex,
		Completed:   req.Completed,
		Value:       req.Value,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.hub.Broadcast(challengeID, userID, EventProgressUpdated, progress)
	return c.JSON(progress)
}

// GetTodayProgress renders null when nothing was recorded today.
func (h *Handler) GetTodayProgress(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	progress, err := h.Progress.Today(c.UserContext(), challengeID, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(progress)
}

func (h *Handler) GetProgressHistory(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	records, err := h.Progress.History(c.UserContext(), challengeID, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(records)
}
