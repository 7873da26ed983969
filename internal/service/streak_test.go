package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(domain.DateFormat, date, time.UTC)
	require.NoError(t, err)
	return parsed.Add(12 * time.Hour)
}

func TestTouch_Transitions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// First ever activity.
	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-02"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakStarted, result.Transition)
	assert.Equal(t, 1, result.Streak.Current)

	// Second touch on the same day is a no-op.
	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-02"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakUnchanged, result.Transition)
	assert.Equal(t, 1, result.Streak.Current)

	// The next day extends.
	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakExtended, result.Transition)
	assert.Equal(t, 2, result.Streak.Current)

	// One missed day with a freeze held: the freeze bridges the gap.
	_, err = env.store.UpdateStreak(ctx, "usr-alice", func(st *domain.Streak) error {
		st.Freezes = 1
		return nil
	})
	require.NoError(t, err)

	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-05"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakFrozen, result.Transition)
	assert.Equal(t, 3, result.Streak.Current)
	assert.Equal(t, 0, result.Streak.Freezes)
	assert.Equal(t, []int{3}, result.Milestones)

	// A longer gap with no freeze resets to 1 but keeps the longest.
	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-09"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakReset, result.Transition)
	assert.Equal(t, 1, result.Streak.Current)
	assert.Equal(t, 3, result.Streak.Longest)
}

func TestTouch_TwoDayGapWithoutFreezeResets(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 5, "2026-03-02", 0, 3)

	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-04"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakReset, result.Transition)
	assert.Equal(t, 1, result.Streak.Current)
}

func TestTouch_BackdatedEventUnchanged(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 2, "2026-03-03", 0)

	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-02"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakUnchanged, result.Transition)
	assert.Equal(t, 2, result.Streak.Current)
	assert.Equal(t, "2026-03-03", result.Streak.LastActiveDate)
}

func TestTouch_MilestonePaysOnce(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 2, "2026-03-02", 0)

	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, result.Milestones)
	assert.Equal(t, 10, result.MilestoneXP)
	assert.Equal(t, 5, result.MilestoneCoins)

	progress, err := env.store.GetProgress(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalXP)
	assert.Equal(t, 5, progress.Coins)

	// Reach day 3 a second time after a reset: no second payout.
	env.setStreak(t, "usr-alice", 2, "2026-03-09", 0, 3)

	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Streak.Current)
	assert.Empty(t, result.Milestones)

	progress, err = env.store.GetProgress(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalXP)
}

func TestTouch_SettlesUnrecordedMilestone(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// Day 3 was reached but its payout never landed: the streak length
	// crossed the milestone while MilestonesHit stayed empty.
	env.setStreak(t, "usr-alice", 3, "2026-03-04", 0)

	// A same-day touch changes nothing about the streak but still
	// settles the outstanding reward.
	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-04"))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakUnchanged, result.Transition)
	assert.Equal(t, []int{3}, result.Milestones)
	assert.Equal(t, 10, result.MilestoneXP)
	assert.Equal(t, 5, result.MilestoneCoins)
	assert.Equal(t, []int{3}, result.Streak.MilestonesHit)

	progress, err := env.store.GetProgress(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalXP)
	assert.Equal(t, 5, progress.Coins)

	// Once recorded it never pays again.
	result, err = env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-05"))
	require.NoError(t, err)
	assert.Empty(t, result.Milestones)

	progress, err = env.store.GetProgress(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalXP)
}

func TestTouch_DSTSpringForwardStillExtends(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	streaks := NewStreakService(env.store, env.points, nil, slog.New(slog.DiscardHandler), ny, 50, 3)

	// 2026-03-08 is only 23 hours long in New York. Consecutive evening
	// touches across the transition must still extend day by day.
	_, err = streaks.Touch(ctx, "usr-alice", time.Date(2026, 3, 7, 21, 0, 0, 0, ny))
	require.NoError(t, err)

	result, err := streaks.Touch(ctx, "usr-alice", time.Date(2026, 3, 8, 21, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakExtended, result.Transition)
	assert.Equal(t, 2, result.Streak.Current)

	result, err = streaks.Touch(ctx, "usr-alice", time.Date(2026, 3, 9, 21, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, domain.StreakExtended, result.Transition)
	assert.Equal(t, 3, result.Streak.Current)
}

func TestTouch_WeekMilestoneGrantsBadge(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 6, "2026-03-02", 0, 3)

	result, err := env.streaks.Touch(ctx, "usr-alice", day(t, "2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, []int{7}, result.Milestones)
	assert.Equal(t, 25, result.MilestoneXP)

	badges, err := env.store.ListUserBadges(ctx, "usr-alice")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, domain.BadgeWeekStreak, badges[0].BadgeID)
}

func TestUseFreeze(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// Nothing held yet.
	_, err := env.streaks.UseFreeze(ctx, "usr-alice", day(t, "2026-03-03"))
	requireCode(t, err, domainerrors.CodeInsufficientResource)

	env.setStreak(t, "usr-alice", 4, "2026-03-02", 2)

	// Covering a fresh day spends one freeze without growing the streak.
	streak, err := env.streaks.UseFreeze(ctx, "usr-alice", day(t, "2026-03-03"))
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Freezes)
	assert.Equal(t, 4, streak.Current)
	assert.Equal(t, "2026-03-03", streak.LastActiveDate)

	// The same day cannot be covered twice.
	_, err = env.streaks.UseFreeze(ctx, "usr-alice", day(t, "2026-03-03"))
	requireCode(t, err, domainerrors.CodeConflict)
}

func TestPurchaseFreeze(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// No coins yet.
	_, err := env.streaks.PurchaseFreeze(ctx, "usr-alice")
	requireCode(t, err, domainerrors.CodeInsufficientResource)

	_, err = env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Coins:       200,
		Source:      domain.PointsSourceAdjustment,
		Description: "test coin grant",
	})
	require.NoError(t, err)

	for held := 1; held <= 3; held++ {
		streak, err := env.streaks.PurchaseFreeze(ctx, "usr-alice")
		require.NoError(t, err)
		assert.Equal(t, held, streak.Freezes)
	}

	// The cap comes before the coin check.
	_, err = env.streaks.PurchaseFreeze(ctx, "usr-alice")
	requireCode(t, err, domainerrors.CodeValidation)

	progress, err := env.store.GetProgress(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Coins) // 200 - 3x50
}

func TestStreakStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 8, "2026-03-03", 1, 3, 7)

	status, err := env.streaks.Status(ctx, "usr-alice", day(t, "2026-03-03"))
	require.NoError(t, err)
	assert.True(t, status.CoveredToday)
	assert.Equal(t, 1.5, status.Multiplier)
	assert.Equal(t, 50, status.FreezeCost)
	assert.Equal(t, 3, status.MaxFreezes)

	status, err = env.streaks.Status(ctx, "usr-alice", day(t, "2026-03-04"))
	require.NoError(t, err)
	assert.False(t, status.CoveredToday)
}
