package handlers

import (
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.Users.Register(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondWithToken(c, fiber.StatusCreated, user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.Users.Login(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondWithToken(c, fiber.StatusOK, user)
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := h.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(status).JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.Users.Get(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.Users.Update(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(user)
}
