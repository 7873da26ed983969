package service

import (
	"context"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportActivity_LessonWithStreakAndMilestone(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// 650 lifetime XP puts the user at level 7 with a 6-day streak going
	// into today's lesson.
	_, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      650,
		Source:      domain.PointsSourceAdjustment,
		Description: "test XP grant",
	})
	require.NoError(t, err)
	env.setStreak(t, "usr-alice", 6, "2026-03-02", 0, 3)

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLessonCompleted,
		SubjectID:  "lsn-42",
		OccurredAt: day(t, "2026-03-03"),
	})
	require.NoError(t, err)

	// The streak extends to 7 before points are computed, so the lesson
	// pays floor(5 * 1.5) and the 7-day milestone rides along.
	assert.Equal(t, domain.StreakExtended, result.StreakTransition)
	assert.Equal(t, 7, result.Streak.Current)
	assert.Equal(t, []int{7}, result.MilestonesHit)

	assert.Equal(t, 5, result.BasePoints)
	assert.Equal(t, 1.5, result.Multiplier)
	assert.Equal(t, 7, result.PointsAwarded)

	assert.Equal(t, 682, result.Progress.TotalXP) // 650 + 7 + 25 milestone
	assert.Equal(t, 7, result.Progress.Level)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.Progress.LessonsCompleted)

	badges, err := env.store.ListUserBadges(ctx, "usr-alice")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, domain.BadgeWeekStreak, badges[0].BadgeID)

	// Everything earned today lands on all three leaderboard windows.
	entry, err := env.store.GetWindowEntry(ctx, domain.WindowAllTime, "all", "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 32, entry.Score)
}

func TestReportActivity_LoginCountsOncePerDay(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")
	at := day(t, "2026-03-03")

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLogin,
		OccurredAt: at,
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyCounted)
	assert.Equal(t, 1, result.PointsAwarded)
	assert.Equal(t, 1, result.Progress.LoginCount)

	// The second login the same day is acknowledged but pays nothing.
	result, err = env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLogin,
		OccurredAt: at.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, result.AlreadyCounted)
	assert.Equal(t, 1, result.Progress.LoginCount)
	assert.Equal(t, 1, result.Progress.TotalXP)

	// The next day counts again.
	result, err = env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLogin,
		OccurredAt: day(t, "2026-03-04"),
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyCounted)
	assert.Equal(t, 2, result.Progress.LoginCount)
}

func TestReportActivity_LoginCountBonusAtSeven(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	_, err := env.store.UpdateProgress(ctx, "usr-alice", func(p *domain.UserProgress) error {
		p.LoginCount = 6
		p.LastLoginDate = "2026-03-02"
		return nil
	})
	require.NoError(t, err)

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLogin,
		OccurredAt: day(t, "2026-03-03"),
	})
	require.NoError(t, err)

	assert.Equal(t, 11, result.BasePoints) // 1 + the 7th-login bonus
	assert.Equal(t, 11, result.PointsAwarded)
	assert.Equal(t, 7, result.Progress.LoginCount)
}

func TestReportActivity_PerfectQuizAdvancesBothGoals(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")
	at := day(t, "2026-03-03")

	env.seedTemplate(t, domain.MissionCompleteQuizzes, domain.CadenceDaily, domain.DifficultyEasy, 1, 10, 2)
	env.seedTemplate(t, domain.MissionPerfectScore, domain.CadenceDaily, domain.DifficultyEasy, 1, 20, 4)

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityQuizCompleted,
		SubjectID:  "qz-9",
		Score:      10,
		MaxScore:   10,
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, result.BasePoints) // 10 flat + 15 perfect bonus
	assert.Equal(t, 25, result.PointsAwarded)
	assert.Len(t, result.MissionsCompleted, 2)

	assert.Equal(t, 1, result.Progress.QuizzesCompleted)
	assert.Equal(t, 1, result.Progress.PerfectQuizzes)
	assert.Equal(t, 2, result.Progress.MissionsCompleted)
	assert.Equal(t, 55, result.Progress.TotalXP) // 25 + 10 + 20 mission rewards

	entry, err := env.store.GetWindowEntry(ctx, domain.WindowAllTime, "all", "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 55, entry.Score)
}

func TestReportActivity_QuizBonusesBeforeMultiplier(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.setStreak(t, "usr-alice", 7, "2026-03-03", 0, 3, 7)

	// A perfect first-attempt quiz inside the speed cutoff stacks all
	// three bonuses into the base, then the streak multiplier scales it:
	// floor((10 + 15 + 5 + 5) * 1.5) = 52.
	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:        domain.ActivityQuizCompleted,
		SubjectID:   "qz-9",
		Score:       10,
		MaxScore:    10,
		Attempt:     1,
		DurationSec: 90,
		OccurredAt:  day(t, "2026-03-04"),
	})
	require.NoError(t, err)

	assert.Equal(t, 35, result.BasePoints)
	assert.Equal(t, 1.5, result.Multiplier)
	assert.Equal(t, 52, result.PointsAwarded)
}

func TestReportActivity_AwardFeedsEarnXPMission(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.seedTemplate(t, domain.MissionEarnXP, domain.CadenceDaily, domain.DifficultyEasy, 20, 5, 1)

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityRecycleLogged,
		Quantity:   10,
		OccurredAt: day(t, "2026-03-03"),
	})
	require.NoError(t, err)

	assert.Equal(t, 20, result.PointsAwarded) // 2 per item
	require.Len(t, result.MissionsCompleted, 1)
	assert.Equal(t, domain.MissionEarnXP, result.MissionsCompleted[0].Type)
	assert.Equal(t, 25, result.Progress.TotalXP)
}

func TestReportActivity_AchievementUnlockScoresLeaderboard(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	env.seedAchievement(t, "ach-first-lesson", "First Lesson",
		domain.Condition{Kind: domain.ConditionLessonsCompleted, Op: domain.OpGTE, Value: 1},
		nil, 10, 0)

	result, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityLessonCompleted,
		OccurredAt: day(t, "2026-03-03"),
	})
	require.NoError(t, err)

	require.Len(t, result.AchievementsUnlocked, 1)
	assert.Equal(t, "ach-first-lesson", result.AchievementsUnlocked[0].ID)
	assert.Equal(t, 15, result.Progress.TotalXP) // 5 lesson + 10 achievement

	entry, err := env.store.GetWindowEntry(ctx, domain.WindowAllTime, "all", "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 15, entry.Score)
}

func TestReportActivity_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")
	at := day(t, "2026-03-03")

	_, err := env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       "napping",
		OccurredAt: at,
	})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.progression.ReportActivity(ctx, "usr-alice", domain.ActivityEvent{
		Type:       domain.ActivityQuizCompleted,
		Score:      11,
		MaxScore:   10,
		OccurredAt: at,
	})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.progression.ReportActivity(ctx, "usr-ghost", domain.ActivityEvent{
		Type:       domain.ActivityLessonCompleted,
		OccurredAt: at,
	})
	requireCode(t, err, domainerrors.CodeNotFound)
}
