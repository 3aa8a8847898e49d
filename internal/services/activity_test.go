package services

import (
	"context"
	"testing"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityFeed(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow))
	progress := NewProgressService(db, clockAt(fixedNow))
	svc := NewActivityService(db)
	creator := newUser(t, db, "alice")
	member := newUser(t, db, "bob")
	outsider := newUser(t, db, "carol")
	ctx := context.Background()

	ch := createChallenge(t, challenges, creator.ID, twoTasks())
	_, err := challenges.JoinByCode(ctx, ch.InviteCode, member.ID)
	require.NoError(t, err)
	_, err = progress.UpsertTask(ctx, member.ID, TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-01", TaskIndex: 0, Completed: true})
	require.NoError(t, err)
	require.NoError(t, challenges.Leave(ctx, ch.ID, member.ID))

	_, err = svc.List(ctx, ch.ID, outsider.ID, 1, 20)
	assert.ErrorIs(t, err, ErrChallengeNotFound)

	page, err := svc.List(ctx, ch.ID, creator.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	actions := make([]string, len(page.Activities))
	for i, a := range page.Activities {
		actions[i] = a.ActionType
	}
	assert.ElementsMatch(t, []string{
		models.ActivityMemberJoined,
		models.ActivityTaskCompleted,
		models.ActivityMemberLeft,
	}, actions)

	second, err := svc.List(ctx, ch.ID, creator.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, second.Activities, 1)
	assert.Equal(t, 2, second.Page)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, limit                   int
		wantPage, wantLimit, wantSkip int
	}{
		{1, 20, 1, 20, 0},
		{0, 0, 1, defaultPageSize, 0},
		{3, 10, 3, 10, 20},
		{2, 500, 2, defaultPageSize, defaultPageSize},
	}
	for _, tt := range tests {
		page, limit, offset := pageBounds(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantSkip, offset)
	}
}
