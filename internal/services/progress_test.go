package services

import (
	"context"
	"testing"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTaskCreatesRecord(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow.AddDate(0, 1, 0)))
	svc := NewProgressService(db, clockAt(fixedNow))
	creator := newUser(t, db, "alice")
	user := newUser(t, db, "bob")

	ch := createChallenge(t, challenges, creator.ID, threeTasks())

	got, err := svc.UpsertTask(context.Background(), user.ID, TaskUpdate{
		ChallengeID: ch.ID,
		Date:        "2024-01-01",
		TaskIndex:   0,
		Completed:   true,
	})
	require.NoError(t, err)

	want := []models.TaskCompletion{
		{TaskIndex: 0, Completed: true},
		{TaskIndex: 1, Completed: false},
		{TaskIndex: 2, Completed: false},
	}
	if diff := cmp.Diff(want, got.CompletedTasks); diff != "" {
		t.Errorf("completed tasks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, got.TotalScore)
	assert.Equal(t, user.ID, got.UserID)
}

func TestUpsertTaskIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow))
	svc := NewProgressService(db, clockAt(fixedNow))
	creator := newUser(t, db, "alice")
	ctx := context.Background()

	ch := createChallenge(t, challenges, creator.ID, threeTasks())
	value := 12000.0
	upd := TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-01", TaskIndex: 1, Completed: true, Value: &value}

	first, err := svc.UpsertTask(ctx, creator.ID, upd)
	require.NoError(t, err)
	var before models.ChallengeProgress
	require.NoError(t, db.First(&before, "id = ?", first.ID).Error)

	// A fresh copy of the value, so the repeat is equal by value, not by pointer.
	again := value
	upd.Value = &again
	second, err := svc.UpsertTask(ctx, creator.ID, upd)
	require.NoError(t, err)

	ignore := cmpopts.IgnoreFields(models.ChallengeProgress{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(first, second, ignore); diff != "" {
		t.Errorf("second upsert changed the record (-first +second):\n%s", diff)
	}

	var stored []models.ChallengeProgress
	require.NoError(t, db.Where("challenge_id = ? AND user_id = ?", ch.ID, creator.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].UpdatedAt.Equal(before.UpdatedAt), "repeat upsert rewrote updated_at")
	assert.Equal(t, 1, stored[0].TotalScore)
	require.NotNil(t, stored[0].CompletedTasks[1].Value)
	assert.Equal(t, 12000.0, *stored[0].CompletedTasks[1].Value)

	// Only the first transition to completed is logged.
	assert.EqualValues(t, 1, countRows(t, db, &models.ChallengeActivity{}, "challenge_id = ? AND action_type = ?", ch.ID, models.ActivityTaskCompleted))
}

func TestTotalScoreTracksCompletedTasks(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow))
	svc := NewProgressService(db, clockAt(fixedNow))
	creator := newUser(t, db, "alice")
	ctx := context.Background()

	ch := createChallenge(t, challenges, creator.ID, threeTasks())

	steps := []struct {
		index     int
		completed bool
	}{
		{0, true}, {2, true}, {1, true}, {0, false}, {0, false}, {2, false}, {0, true},
	}
	for _, step := range steps {
		got, err := svc.UpsertTask(ctx, creator.ID, TaskUpdate{
			ChallengeID: ch.ID,
			Date:        "2024-01-01",
			TaskIndex:   step.index,
			Completed:   step.completed,
		})
		require.NoError(t, err)

		completed := 0
		for _, task := range got.CompletedTasks {
			if task.Completed {
				completed++
			}
		}
		assert.Equal(t, completed, got.TotalScore)
	}

	today, err := svc.Today(ctx, ch.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, 2, today.TotalScore)
}

func TestUpsertTaskRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow))
	svc := NewProgressService(db, clockAt(fixedNow))
	creator := newUser(t, db, "alice")
	ctx := context.Background()

	ch := createChallenge(t, challenges, creator.ID, twoTasks())

	tests := []struct {
		name string
		upd  TaskUpdate
		kind Kind
	}{
		{"bad date", TaskUpdate{ChallengeID: ch.ID, Date: "01/01/2024"}, KindInvalid},
		{"impossible date", TaskUpdate{ChallengeID: ch.ID, Date: "2024-02-30"}, KindInvalid},
		{"negative index", TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-01", TaskIndex: -1}, KindInvalid},
		{"index past existing record", TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-01", TaskIndex: 2}, KindInvalid},
		{"index past task list", TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-05", TaskIndex: 5}, KindInvalid},
		{"unknown challenge", TaskUpdate{ChallengeID: uuid.New(), Date: "2024-01-01"}, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertTask(ctx, creator.ID, tt.upd)
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.kind, svcErr.Kind)
		})
	}

	_, err := svc.UpsertTask(ctx, uuid.Nil, TaskUpdate{ChallengeID: ch.ID, Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.EqualValues(t, 1, countRows(t, db, &models.ChallengeProgress{}, "challenge_id = ?", ch.ID))
}

func TestTodayAndHistory(t *testing.T) {
	db := newTestDB(t)
	challenges := NewChallengeService(db, clockAt(fixedNow))
	creator := newUser(t, db, "alice")
	ctx := context.Background()

	ch := createChallenge(t, challenges, creator.ID, twoTasks())

	later := NewProgressService(db, clockAt(fixedNow.AddDate(0, 0, 2)))
	today, err := later.Today(ctx, ch.ID, creator.ID)
	require.NoError(t, err)
	assert.Nil(t, today)

	for _, date := range []string{"2024-01-03", "2023-12-31"} {
		_, err := later.UpsertTask(ctx, creator.ID, TaskUpdate{ChallengeID: ch.ID, Date: date, TaskIndex: 0, Completed: true})
		require.NoError(t, err)
	}

	today, err = later.Today(ctx, ch.ID, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, "2024-01-03", today.Date)

	history, err := later.History(ctx, ch.ID, creator.ID)
	require.NoError(t, err)
	dates := make([]string, len(history))
	for i, p := range history {
		dates[i] = p.Date
	}
	assert.Equal(t, []string{"2023-12-31", "2024-01-01", "2024-01-03"}, dates)
}
