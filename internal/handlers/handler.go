package handlers

import (
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Services bundles what the handlers call into.
type Services struct {
	Users         *services.UserService
	Challenges    *services.ChallengeService
	Progress      *services.ProgressService
	Invitations   *services.InvitationService
	Leaderboard   *services.LeaderboardService
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Profiles      *services.ProfileService
	Workouts      *services.WorkoutService
	Nutrition     *services.NutritionService
	Analytics     *services.AnalyticsService
}

type Handler struct {
	Services
	auth *middleware.Auth
	hub  *Hub
	log  *zap.Logger
}

func New(auth *middleware.Auth, svc Services, hub *Hub, log *zap.Logger) *Handler {
	return &Handler{Services: svc, auth: auth, hub: hub, log: log}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// paramID parses the named route parameter as a uuid.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
