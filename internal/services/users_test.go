package services

import (
	"context"
	"testing"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Email: " Alice@Example.com ", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "alice@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "bob@example.com", Password: "123"})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindInvalid, svcErr.Kind)

	got, err := svc.Login(ctx, models.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := newUser(t, db, "alice")
	ctx := context.Background()

	display := "Coach A"
	updated, err := svc.Update(ctx, user.ID, models.UpdateUserRequest{DisplayName: &display})
	require.NoError(t, err)
	assert.Equal(t, "Coach A", updated.Summary().Name("Anonymous"))

	summaries, err := userSummaries(db, []uuid.UUID{user.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "Coach A", summaries[user.ID].Name(""))
}
