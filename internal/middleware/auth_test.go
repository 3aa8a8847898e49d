package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(a *Auth) *fiber.App {
	app := fiber.New()
	app.Get("/me", a.Protected(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c).String())
	})
	return app
}

func TestProtected(t *testing.T) {
	auth := NewAuth("test-secret")
	userID := uuid.New()
	token, err := auth.GenerateToken(userID, "alice@example.com")
	require.NoError(t, err)

	expired := NewAuth("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	stale, err := expired.GenerateToken(userID, "alice@example.com")
	require.NoError(t, err)

	forged, err := NewAuth("other-secret").GenerateToken(userID, "alice@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"no bearer prefix", token, fiber.StatusUnauthorized},
		{"expired", "Bearer " + stale, fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", fiber.StatusUnauthorized},
	}

	app := protectedApp(auth)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestParseToken(t *testing.T) {
	auth := NewAuth("test-secret")
	userID := uuid.New()
	token, err := auth.GenerateToken(userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	nilUser, err := auth.GenerateToken(uuid.Nil, "")
	require.NoError(t, err)
	_, err = auth.ParseToken(nilUser)
	assert.Error(t, err)
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c).String())
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
