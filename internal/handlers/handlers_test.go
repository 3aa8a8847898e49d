package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnold/fitchallenge-api/internal/database"
	"github.com/arnold/fitchallenge-api/internal/handlers"
	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/arnold/fitchallenge-api/internal/routes"
	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	auth := middleware.NewAuth("test-secret")
	h := handlers.New(auth, handlers.Services{
		Users:         services.NewUserService(db),
		Challenges:    services.NewChallengeService(db),
		Progress:      services.NewProgressService(db),
		Invitations:   services.NewInvitationService(db),
		Leaderboard:   services.NewLeaderboardService(db),
		Activity:      services.NewActivityService(db),
		Notifications: services.NewNotificationService(db, log, nil),
		Profiles:      services.NewProfileService(db),
		Workouts:      services.NewWorkoutService(db),
		Nutrition:     services.NewNutritionService(db),
		Analytics:     services.NewAnalyticsService(db),
	}, handlers.NewHub(log), log)

	app := fiber.New()
	routes.Setup(app, h, auth)
	return &testServer{t: t, app: app, db: db}
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body interface{}, out interface{}) int {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(name string) (string, models.User) {
	s.t.Helper()
	var auth models.AuthResponse
	status := s.do("POST", "/api/auth/register", "", models.RegisterRequest{
		Email:    name + "@example.com",
		Password: "secret1",
		Name:     name,
	}, &auth)
	require.Equal(s.t, fiber.StatusCreated, status)
	return auth.Token, auth.User
}

func (s *testServer) createChallenge(token string) models.CreateChallengeResponse {
	s.t.Helper()
	var created models.CreateChallengeResponse
	status := s.do("POST", "/api/challenges", token, models.CreateChallengeRequest{
		Name: "Plank month",
		DailyTasks: []models.DailyTask{
			{Name: "Plank"},
			{Name: "Squats"},
		},
	}, &created)
	require.Equal(s.t, fiber.StatusCreated, status)
	return created
}

func TestChallengeLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")
	bob, bobUser := s.register("bob")

	created := s.createChallenge(alice)
	base := "/api/challenges/" + created.ChallengeID.String()

	var preview models.ChallengePreview
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/invites/"+strings.ToLower(created.InviteCode), "", nil, &preview))
	assert.Equal(t, "alice", preview.CreatorName)
	assert.Equal(t, 1, preview.ParticipantCount)

	var joined models.Challenge
	code := strings.ToLower(created.InviteCode)
	require.Equal(t, fiber.StatusOK, s.do("POST", "/api/challenges/join", bob, models.JoinChallengeRequest{InviteCode: code}, &joined))
	assert.Len(t, joined.Participants, 2)
	assert.Equal(t, fiber.StatusConflict, s.do("POST", "/api/challenges/join", bob, models.JoinChallengeRequest{InviteCode: code}, nil))
	assert.Equal(t, fiber.StatusOK, s.do("POST", "/api/challenges/join-after-signup", bob, models.JoinChallengeRequest{InviteCode: code}, nil))

	index := 1
	var progress models.ChallengeProgress
	require.Equal(t, fiber.StatusOK, s.do("PUT", base+"/progress", bob, models.UpdateProgressRequest{
		Date:      "2024-01-01",
		TaskIndex: &index,
		Completed: true,
	}, &progress))
	assert.Equal(t, 1, progress.TotalScore)

	var board []models.LeaderboardEntry
	require.Equal(t, fiber.StatusOK, s.do("GET", base+"/leaderboard", alice, nil, &board))
	require.Len(t, board, 2)
	assert.Equal(t, bobUser.ID, board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)

	var participants []models.ParticipantInfo
	require.Equal(t, fiber.StatusOK, s.do("GET", base+"/participants", bob, nil, &participants))
	assert.Len(t, participants, 2)

	var feed models.ActivityPage
	require.Equal(t, fiber.StatusOK, s.do("GET", base+"/activity", alice, nil, &feed))
	assert.EqualValues(t, 2, feed.Total)

	var notes models.NotificationPage
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/notifications", alice, nil, &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, models.NotificationParticipantJoined, notes.Notifications[0].Type)

	assert.Equal(t, fiber.StatusOK, s.do("POST", base+"/leave", bob, nil, nil))
	assert.Equal(t, fiber.StatusForbidden, s.do("DELETE", base, bob, nil, nil))
	assert.Equal(t, fiber.StatusNoContent, s.do("DELETE", base, alice, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do("GET", base, alice, nil, nil))
}

func TestInvitationFlow(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")
	bob, bobUser := s.register("bob")

	created := s.createChallenge(alice)
	base := "/api/challenges/" + created.ChallengeID.String()

	assert.Equal(t, fiber.StatusForbidden, s.do("POST", base+"/invitations", bob, models.InviteUserRequest{UserID: bobUser.ID}, nil))

	var invitation models.ChallengeInvitation
	require.Equal(t, fiber.StatusCreated, s.do("POST", base+"/invitations", alice, models.InviteUserRequest{UserID: bobUser.ID}, &invitation))
	assert.Equal(t, fiber.StatusConflict, s.do("POST", base+"/invitations", alice, models.InviteUserRequest{UserID: bobUser.ID}, nil))

	var pending []models.PendingInvitation
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/invitations/pending", bob, nil, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].InviterName)

	respond := "/api/invitations/" + invitation.ID.String() + "/respond"
	assert.Equal(t, fiber.StatusForbidden, s.do("POST", respond, alice, models.RespondInvitationRequest{Accept: true}, nil))

	var result struct {
		ChallengeID uuid.UUID `json:"challengeId"`
		Joined      bool      `json:"joined"`
	}
	require.Equal(t, fiber.StatusOK, s.do("POST", respond, bob, models.RespondInvitationRequest{Accept: true}, &result))
	assert.Equal(t, created.ChallengeID, result.ChallengeID)
	assert.True(t, result.Joined)
	assert.Equal(t, fiber.StatusConflict, s.do("POST", respond, bob, models.RespondInvitationRequest{Accept: false}, nil))

	var today *models.ChallengeProgress
	require.Equal(t, fiber.StatusOK, s.do("GET", base+"/progress/today", bob, nil, &today))
	require.NotNil(t, today)
	assert.Len(t, today.CompletedTasks, 2)

	var notes models.NotificationPage
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/notifications", bob, nil, &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, models.NotificationChallengeInvite, notes.Notifications[0].Type)

	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/notifications", alice, nil, &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, models.NotificationInvitationAccepted, notes.Notifications[0].Type)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")
	created := s.createChallenge(alice)
	base := "/api/challenges/" + created.ChallengeID.String()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", "GET", "/api/challenges", "", nil, fiber.StatusUnauthorized},
		{"bad challenge id", "GET", "/api/challenges/not-a-uuid", alice, nil, fiber.StatusBadRequest},
		{"unknown challenge", "GET", "/api/challenges/" + uuid.NewString(), alice, nil, fiber.StatusNotFound},
		{"missing task index", "PUT", base + "/progress", alice, fiber.Map{"date": "2024-01-01"}, fiber.StatusBadRequest},
		{"bad date", "PUT", base + "/progress", alice, fiber.Map{"date": "yesterday", "taskIndex": 0}, fiber.StatusBadRequest},
		{"task out of range", "PUT", base + "/progress", alice, fiber.Map{"date": "2024-01-01", "taskIndex": 9}, fiber.StatusBadRequest},
		{"empty invite code", "POST", "/api/challenges/join", alice, fiber.Map{"inviteCode": " "}, fiber.StatusBadRequest},
		{"unknown invite code", "POST", "/api/challenges/join", alice, fiber.Map{"inviteCode": "zzzzzz"}, fiber.StatusNotFound},
		{"creator cannot leave", "POST", base + "/leave", alice, nil, fiber.StatusConflict},
		{"wrong password", "POST", "/api/auth/login", "", models.LoginRequest{Email: "alice@example.com", Password: "nope"}, fiber.StatusUnauthorized},
		{"duplicate email", "POST", "/api/auth/register", "", models.RegisterRequest{Email: "alice@example.com", Password: "secret1"}, fiber.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.do(tt.method, tt.path, tt.token, tt.body, nil))
		})
	}
}

func TestProfileAndWeight(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")

	var profile *models.Profile
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/profile", alice, nil, &profile))
	assert.Nil(t, profile)

	require.Equal(t, fiber.StatusOK, s.do("PUT", "/api/profile", alice, fiber.Map{"fitnessLevel": "advanced", "goals": []string{"strength"}}, &profile))
	require.NotNil(t, profile)
	assert.Equal(t, "advanced", *profile.FitnessLevel)
	assert.Equal(t, fiber.StatusBadRequest, s.do("PUT", "/api/profile", alice, fiber.Map{"fitnessLevel": "legend"}, nil))

	require.Equal(t, fiber.StatusCreated, s.do("POST", "/api/weight", alice, models.LogWeightRequest{Weight: 81.2}, nil))
	var entries []models.WeightEntry
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/weight?days=7", alice, nil, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 81.2, entries[0].Weight)

	var me models.User
	require.Equal(t, fiber.StatusOK, s.do("PUT", "/api/me", alice, fiber.Map{"displayName": "Al"}, &me))
	assert.Equal(t, "Al", me.DisplayName)
}

func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")

	squats := models.Exercise{Name: "Squats", Category: "legs", Difficulty: "beginner"}
	require.NoError(t, s.db.Create(&squats).Error)

	var exercises []models.Exercise
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/exercises?category=legs", alice, nil, &exercises))
	require.Len(t, exercises, 1)

	var plan models.WorkoutPlan
	require.Equal(t, fiber.StatusCreated, s.do("POST", "/api/workout-plans", alice, models.CreateWorkoutPlanRequest{
		Name: "Leg day", Difficulty: "beginner", Duration: 30,
		Exercises: []models.PlannedExercise{{ExerciseID: squats.ID, Sets: 1}},
	}, &plan))

	var session models.WorkoutSession
	require.Equal(t, fiber.StatusCreated, s.do("POST", "/api/workouts", alice, models.StartWorkoutRequest{PlanID: &plan.ID, Name: "Leg day"}, &session))
	require.Len(t, session.Exercises, 1)

	var active *models.WorkoutSession
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/workouts/active", alice, nil, &active))
	require.NotNil(t, active)
	assert.Equal(t, session.ID, active.ID)

	weight := 100.0
	sets := []models.SessionExercise{{ExerciseID: squats.ID, Sets: []models.WorkoutSet{{Weight: &weight, Completed: true}}}}
	end := session.StartTime.Add(40 * time.Minute)
	require.Equal(t, fiber.StatusOK, s.do("PUT", "/api/workouts/"+session.ID.String(), alice, models.UpdateWorkoutRequest{Exercises: &sets, EndTime: &end}, nil))

	active = nil
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/workouts/active", alice, nil, &active))
	assert.Nil(t, active)

	var stats models.WorkoutStats
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/stats/workouts?days=7", alice, nil, &stats))
	assert.Equal(t, 1, stats.TotalWorkouts)
	assert.Equal(t, 40, stats.TotalMinutes)

	var records []models.PersonalRecord
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/stats/records", alice, nil, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Squats", records[0].ExerciseName)
	assert.Equal(t, 100.0, records[0].Weight)

	bob, _ := s.register("bob")
	assert.Equal(t, fiber.StatusNotFound, s.do("PUT", "/api/workouts/"+session.ID.String(), bob, models.UpdateWorkoutRequest{}, nil))
	assert.Equal(t, fiber.StatusBadRequest, s.do("PUT", "/api/workouts/not-a-uuid", bob, models.UpdateWorkoutRequest{}, nil))
}

func TestNutritionFlow(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice")

	var food models.Food
	require.Equal(t, fiber.StatusCreated, s.do("POST", "/api/foods", alice, models.AddFoodRequest{
		Name: "Oats", Barcode: strPtr("123"), CaloriesPerServing: 389, ServingSize: "100g",
		Macros: models.Macros{Protein: 16.9, Carbs: 66, Fat: 6.9},
	}, &food))

	var found []models.Food
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/foods?q=Oa", alice, nil, &found))
	require.Len(t, found, 1)
	assert.Equal(t, fiber.StatusOK, s.do("GET", "/api/foods/barcode/123", alice, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.do("GET", "/api/foods/barcode/999", alice, nil, nil))

	today := time.Now().UTC().Format(models.DateLayout)
	var log models.NutritionLog
	require.Equal(t, fiber.StatusOK, s.do("POST", "/api/nutrition/meals", alice, models.LogMealRequest{
		Date: today, MealType: "breakfast",
		Foods: []models.FoodPortion{{FoodID: food.ID, Quantity: 1, Unit: "bowl"}},
	}, &log))
	assert.Equal(t, 389.0, log.TotalCalories)
	assert.Equal(t, fiber.StatusBadRequest, s.do("POST", "/api/nutrition/meals", alice, models.LogMealRequest{Date: today, MealType: "elevenses"}, nil))

	require.Equal(t, fiber.StatusOK, s.do("POST", "/api/nutrition/water", alice, models.WaterIntakeRequest{Date: today, Amount: 300}, &log))
	assert.Equal(t, 300.0, log.WaterIntake)

	var current *models.NutritionLog
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/nutrition/today", alice, nil, &current))
	require.NotNil(t, current)
	assert.Len(t, current.Meals, 1)

	var stats models.NutritionStats
	require.Equal(t, fiber.StatusOK, s.do("GET", "/api/stats/nutrition", alice, nil, &stats))
	assert.Equal(t, 389, stats.AvgCalories)
	assert.Equal(t, 66, stats.AvgCarbs)
}

func strPtr(s string) *string { return &s }
