package service

import (
	"context"
	"testing"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAward_RecordsEntryAndMirrors(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	result, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      30,
		Coins:       5,
		Source:      domain.PointsSourceLesson,
		SourceID:    "lsn-1",
		Description: "finished a lesson",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Entry)
	assert.Equal(t, 30, result.Entry.Points)
	assert.Equal(t, domain.PointsSourceLesson, result.Entry.Source)
	assert.False(t, result.LeveledUp)

	assert.Equal(t, 30, result.Progress.TotalXP)
	assert.Equal(t, 1, result.Progress.Level)
	assert.Equal(t, 5, result.Progress.Coins)

	user, err := env.store.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 30, user.Points)
}

func TestAward_LevelUpPaysCoinBonusPerLevel(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	// 250 XP crosses two level boundaries at once.
	result, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      250,
		Source:      domain.PointsSourceAdjustment,
		Description: "test XP grant",
	})
	require.NoError(t, err)

	assert.True(t, result.LeveledUp)
	assert.Equal(t, 3, result.NewLevel)
	assert.Equal(t, 50, result.CoinBonus) // 20 for level 2, 30 for level 3
	assert.Equal(t, 50, result.Progress.Coins)
	assert.Equal(t, 250, result.Progress.TotalXP)
}

func TestSpend_LowersBalanceNotLifetimeXP(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	_, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      100,
		Source:      domain.PointsSourceQuiz,
		Description: "quiz reward",
	})
	require.NoError(t, err)

	progress, err := env.points.Spend(ctx, "usr-alice", 40, 0, "avatar frame")
	require.NoError(t, err)

	assert.Equal(t, 100, progress.TotalXP)
	assert.Equal(t, 2, progress.Level)

	user, err := env.store.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 60, user.Points)
}

func TestSpend_Insufficient(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	_, err := env.points.Spend(ctx, "usr-alice", 10, 0, "too expensive")
	requireCode(t, err, domainerrors.CodeInsufficientResource)

	_, err = env.points.Spend(ctx, "usr-alice", 0, 10, "no coins either")
	requireCode(t, err, domainerrors.CodeInsufficientResource)

	_, err = env.points.Spend(ctx, "usr-alice", 0, 0, "nothing")
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAward_RejectsEmptyMovementAndDescription(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	_, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Source:      domain.PointsSourceAdjustment,
		Description: "moves nothing",
	})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.points.Award(ctx, AwardRequest{
		UserID: "usr-alice",
		Points: 10,
		Source: domain.PointsSourceLesson,
	})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      10,
		Source:      domain.PointsSourceLesson,
		Description: "   ",
	})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAward_CoinOnlySkipsLedger(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	result, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Coins:       25,
		Source:      domain.PointsSourceAdjustment,
		Description: "coin grant",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Entry)
	assert.Equal(t, 25, result.Progress.Coins)
	assert.Equal(t, 0, result.Progress.TotalXP)

	// The ledger records XP movement only.
	page, _, err := env.points.History(ctx, "usr-alice", 10, "")
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = env.points.Award(ctx, AwardRequest{
		UserID:      "usr-ghost",
		Coins:       25,
		Source:      domain.PointsSourceAdjustment,
		Description: "coin grant",
	})
	requireCode(t, err, domainerrors.CodeNotFound)

	_, err = env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Coins:       -100,
		Source:      domain.PointsSourceAdjustment,
		Description: "coin claw-back",
	})
	requireCode(t, err, domainerrors.CodeInsufficientResource)
}

func TestAward_UnknownSource(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "usr-alice")

	_, err := env.points.Award(context.Background(), AwardRequest{
		UserID:      "usr-alice",
		Points:      10,
		Source:      "bribery",
		Description: "shady",
	})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAward_UserNotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.points.Award(context.Background(), AwardRequest{
		UserID:      "usr-ghost",
		Points:      10,
		Source:      domain.PointsSourceLesson,
		Description: "finished a lesson",
	})
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestHistory_Paged(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	for _, points := range []int{10, 20, 30} {
		_, err := env.points.Award(ctx, AwardRequest{
			UserID:      "usr-alice",
			Points:      points,
			Source:      domain.PointsSourceLesson,
			Description: "finished a lesson",
		})
		require.NoError(t, err)
	}

	page, cursor, err := env.points.History(ctx, "usr-alice", 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, cursor)
	assert.Equal(t, 30, page[0].Points) // newest first

	rest, cursor, err := env.points.History(ctx, "usr-alice", 2, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, cursor)
	assert.Equal(t, 10, rest[0].Points)
}

func TestReconcile_RestoresMirrorsFromLedger(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "usr-alice")

	_, err := env.points.Award(ctx, AwardRequest{
		UserID:      "usr-alice",
		Points:      120,
		Source:      domain.PointsSourceQuiz,
		Description: "quiz reward",
	})
	require.NoError(t, err)

	// Simulate drift in the derived mirror.
	_, err = env.store.UpdateProgress(ctx, "usr-alice", func(p *domain.UserProgress) error {
		p.TotalXP = 999
		return nil
	})
	require.NoError(t, err)

	progress, err := env.points.Reconcile(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Equal(t, 120, progress.TotalXP)
	assert.Equal(t, 2, progress.Level)
}

func TestReconcile_UserNotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.points.Reconcile(context.Background(), "usr-ghost")
	requireCode(t, err, domainerrors.CodeNotFound)
}
