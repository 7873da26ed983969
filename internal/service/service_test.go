package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/cache"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/store"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

// testEnv wires the full service stack over a throwaway store.
type testEnv struct {
	store        *store.Store
	points       *PointsService
	streaks      *StreakService
	missions     *MissionService
	leaderboard  *LeaderboardService
	achievements *AchievementService
	progression  *ProgressionService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c, err := cache.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	logger := slog.New(slog.DiscardHandler)

	points := NewPointsService(s, nil, logger)
	streaks := NewStreakService(s, points, nil, logger, time.UTC, 50, 3)
	missions := NewMissionService(s, points, HeuristicScorer{}, nil, logger, time.UTC)
	leaderboard := NewLeaderboardService(s, c, logger, time.UTC, time.Minute)
	achievements := NewAchievementService(s, points, nil, logger)
	progression := NewProgressionService(s, points, streaks, missions, leaderboard, achievements, logger, time.UTC)

	return &testEnv{
		store:        s,
		points:       points,
		streaks:      streaks,
		missions:     missions,
		leaderboard:  leaderboard,
		achievements: achievements,
		progression:  progression,
	}
}

func (e *testEnv) createUser(t *testing.T, userID string) *domain.User {
	return e.createUserIn(t, userID, "8", "Green Valley")
}

func (e *testEnv) createUserIn(t *testing.T, userID, grade, college string) *domain.User {
	t.Helper()

	user := &domain.User{
		Base:        domain.Base{ID: userID},
		Email:       userID + "@example.com",
		DisplayName: "User " + userID,
		Role:        domain.RoleStudent,
		Grade:       grade,
		College:     college,
	}
	user.InitTimestamps()

	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedTemplate(t *testing.T, missionType domain.MissionType, cadence domain.MissionCadence, difficulty domain.MissionDifficulty, target, rewardXP, rewardCoins int) *domain.MissionTemplate {
	t.Helper()

	tmpl := &domain.MissionTemplate{
		Base:        domain.Base{ID: id.MustGenerate("mtpl")},
		Type:        missionType,
		Cadence:     cadence,
		Difficulty:  difficulty,
		Title:       string(missionType) + " mission",
		TargetValue: target,
		RewardXP:    rewardXP,
		RewardCoins: rewardCoins,
		Active:      true,
	}
	tmpl.InitTimestamps()

	require.NoError(t, e.store.Templates.Create(context.Background(), tmpl.ID, tmpl))
	return tmpl
}

func (e *testEnv) seedAchievement(t *testing.T, achID, name string, cond domain.Condition, prereqs []string, rewardXP, rewardCoins int) *domain.Achievement {
	t.Helper()

	def := &domain.Achievement{
		Base:          domain.Base{ID: achID},
		Name:          name,
		Tier:          domain.TierBronze,
		Condition:     cond,
		Prerequisites: prereqs,
		RewardXP:      rewardXP,
		RewardCoins:   rewardCoins,
	}
	def.InitTimestamps()

	require.NoError(t, e.store.Achievements.Create(context.Background(), achID, def))
	return def
}

// setStreak writes streak state directly, bypassing touch semantics,
// so tests can start from a known day count.
func (e *testEnv) setStreak(t *testing.T, userID string, current int, lastActive string, freezes int, milestonesHit ...int) {
	t.Helper()

	_, err := e.store.UpdateStreak(context.Background(), userID, func(st *domain.Streak) error {
		st.Current = current
		st.Longest = current
		st.LastActiveDate = lastActive
		st.Freezes = freezes
		st.MilestonesHit = milestonesHit
		return nil
	})
	require.NoError(t, err)
}
