package routes

import (
	"github.com/arnold/fitchallenge-api/internal/handlers"
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, auth *middleware.Auth) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	// Invite previews are shown before the visitor has an account.
	api.Get("/invites/:code", h.PreviewInvite)

	protected := api.Group("/", auth.Protected())

	protected.Get("/me", h.GetMe)
	protected.Put("/me", h.UpdateMe)

	protected.Get("/profile", h.GetProfile)
	protected.Put("/profile", h.UpsertProfile)
	protected.Post("/weight", h.LogWeight)
	protected.Get("/weight", h.GetWeightProgress)

	// Training
	protected.Get("/exercises", h.GetExercises)
	protected.Get("/exercises/:id", h.GetExercise)
	protected.Get("/workout-plans", h.GetWorkoutPlans)
	protected.Post("/workout-plans", h.CreateWorkoutPlan)
	workouts := protected.Group("/workouts")
	workouts.Get("/", h.GetWorkouts)
	workouts.Post("/", h.StartWorkout)
	workouts.Get("/active", h.GetActiveWorkout)
	workouts.Put("/:id", h.UpdateWorkout)

	// Nutrition
	foods := protected.Group("/foods")
	foods.Get("/", h.SearchFoods)
	foods.Post("/", h.AddFood)
	foods.Get("/barcode/:barcode", h.GetFoodByBarcode)
	nutrition := protected.Group("/nutrition")
	nutrition.Get("/today", h.GetTodayNutrition)
	nutrition.Post("/meals", h.LogMeal)
	nutrition.Post("/water", h.UpdateWaterIntake)

	stats := protected.Group("/stats")
	stats.Get("/workouts", h.GetWorkoutStats)
	stats.Get("/nutrition", h.GetNutritionStats)
	stats.Get("/records", h.GetPersonalRecords)

	challenges := protected.Group("/challenges")
	challenges.Get("/", h.GetChallenges)
	challenges.Post("/", h.CreateChallenge)
	challenges.Post("/join", h.JoinChallenge)
	challenges.Post("/join-after-signup", h.JoinAfterSignup)
	challenges.Get("/:id", h.GetChallenge)
	challenges.Delete("/:id", h.DeleteChallenge)

	// Roster & invitations
	challenges.Post("/:id/invitations", h.InviteUser)
	challenges.Get("/:id/participants", h.GetParticipants)
	challenges.Delete("/:id/participants/:userId", h.RemoveParticipant)
	challenges.Post("/:id/leave", h.LeaveChallenge)

	// Daily progress
	challenges.Put("/:id/progress", h.UpdateProgress)
	challenges.Get("/:id/progress/today", h.GetTodayProgress)
	challenges.Get("/:id/progress", h.GetProgressHistory)

	challenges.Get("/:id/leaderboard", h.GetLeaderboard)
	challenges.Get("/:id/activity", h.GetChallengeActivity)

	invitations := protected.Group("/invitations")
	invitations.Get("/pending", h.GetPendingInvitations)
	invitations.Post("/:id/respond", h.RespondToInvitation)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	// WebSocket for live leaderboard and roster updates
	app.Get("/ws/challenges/:id", h.WebSocketUpgrade(), websocket.New(h.HandleWebSocket))
}
