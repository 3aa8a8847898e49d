package handlers

import (
	"strconv"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetExercises(c *fiber.Ctx) error {
	exercises, err := h.Workouts.ListExercises(c.UserContext(), c.Query("category"), c.Query("difficulty"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(exercises)
}

func (h *Handler) GetExercise(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid exercise ID")
	}

	exercise, err := h.Workouts.GetExercise(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(exercise)
}

func (h *Handler) GetWorkoutPlans(c *fiber.Ctx) error {
	plans, err := h.Workouts.ListPlans(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(plans)
}

func (h *Handler) CreateWorkoutPlan(c *fiber.Ctx) error {
	var req models.CreateWorkoutPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := h.Workouts.CreatePlan(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *Handler) StartWorkout(c *fiber.Ctx) error {
	var req models.StartWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := h.Workouts.StartSession(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handler) UpdateWorkout(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid workout ID")
	}
	var req models.UpdateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := h.Workouts.UpdateSession(c.UserContext(), middleware.GetUserID(c), id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(session)
}

// GetWorkouts lists the latest ?limit= sessions, 10 by default.
func (h *Handler) GetWorkouts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	sessions, err := h.Workouts.ListSessions(c.UserContext(), middleware.GetUserID(c), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sessions)
}

// GetActiveWorkout renders null when no session is open.
func (h *Handler) GetActiveWorkout(c *fiber.Ctx) error {
	session, err := h.Workouts.ActiveSession(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(session)
}
