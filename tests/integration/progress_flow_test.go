package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/types/habit"
	"habitHiveAPI/services"
	"habitHiveAPI/tests/helpers"
)

func TestWeeklyTrackerFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	habitService := services.NewHabitService(pool)
	completionService := services.NewCompletionService(pool)
	progressService := services.NewProgressService(pool, completionService)

	ctx := context.Background()
	clerkID := "user_test_weekly_" + time.Now().Format("20060102150405")
	helpers.CreateTestUser(t, pool, clerkID)
	categoryID := helpers.CreateTestCategory(t, pool, "weekly")

	older, err := habitService.CreateUserHabit(ctx, clerkID, &habit.CreateHabitRequest{
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)

	_, err = habitService.CreateUserHabit(ctx, clerkID, &habit.CreateHabitRequest{
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)

	// backdate the first habit and give it a completion yesterday
	_, err = pool.Exec(ctx,
		`UPDATE user_habits SET created_at = NOW() - INTERVAL '3 days' WHERE id = $1`, older.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO completions (id, user_habit_id, completed_at, amount)
		VALUES (gen_random_uuid(), $1, NOW() - INTERVAL '1 day', 1)`, older.ID)
	require.NoError(t, err)

	days, err := progressService.GetWeeklyTracker(ctx, clerkID, nil)
	require.NoError(t, err)
	require.Len(t, days, 7)

	// oldest first, ending today
	for i := 1; i < 7; i++ {
		assert.True(t, days[i].Date.After(days[i-1].Date))
	}

	yesterday := days[5]
	assert.Equal(t, 1, yesterday.TotalEligible, "only the backdated habit existed yesterday")
	assert.Equal(t, 1, yesterday.CompletedCount)
	assert.Equal(t, 100, yesterday.CompletionRate)

	today := days[6]
	assert.Equal(t, 2, today.TotalEligible)
	assert.Equal(t, 0, today.CompletedCount)
	assert.Equal(t, 0, today.CompletionRate)

	// before either habit existed the day reports zeroes
	assert.Equal(t, 0, days[0].TotalEligible)
	assert.Equal(t, 0, days[0].CompletionRate)
}

func TestHabitProgressFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	habitService := services.NewHabitService(pool)
	completionService := services.NewCompletionService(pool)
	progressService := services.NewProgressService(pool, completionService)

	ctx := context.Background()
	clerkID := "user_test_hprog_" + time.Now().Format("20060102150405")
	helpers.CreateTestUser(t, pool, clerkID)
	categoryID := helpers.CreateTestCategory(t, pool, "hprog")

	h, err := habitService.CreateUserHabit(ctx, clerkID, &habit.CreateHabitRequest{
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`UPDATE user_habits SET created_at = NOW() - INTERVAL '3 days' WHERE id = $1`, h.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO completions (id, user_habit_id, completed_at, amount)
		VALUES (gen_random_uuid(), $1, NOW() - INTERVAL '1 day', 1)`, h.ID)
	require.NoError(t, err)

	p, err := progressService.GetHabitProgress(ctx, clerkID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, p.UserHabitID)
	assert.Equal(t, 4, p.DaysActive)
	assert.Equal(t, 1, p.TotalCompletions)
	assert.Equal(t, 25, p.SuccessRate)
	require.Len(t, p.Last7Days, 7)
	assert.True(t, p.Last7Days[5], "yesterday had a completion")
	assert.False(t, p.Last7Days[6], "today does not")
}

func TestHabitProgressOwnership(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	completionService := services.NewCompletionService(pool)
	progressService := services.NewProgressService(pool, completionService)

	ctx := context.Background()
	clerkID := "user_test_hown_" + time.Now().Format("20060102150405")
	helpers.CreateTestUser(t, pool, clerkID)

	_, err := progressService.GetHabitProgress(ctx, clerkID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
