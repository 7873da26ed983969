package store

import (
	"context"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnlock_Unique(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	unlock := &domain.UserAchievement{
		UserID:        "usr-ach1",
		AchievementID: "ach-first-lesson",
		UnlockedAt:    time.Now(),
	}

	require.NoError(t, s.CreateUnlock(ctx, unlock))

	// A second unlock of the same pair loses benignly.
	err := s.CreateUnlock(ctx, unlock)
	require.ErrorIs(t, err, ErrAlreadyExists)

	unlocks, err := s.ListUnlocks(ctx, "usr-ach1")
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestCreateUnlock_SeparateAchievements(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, achID := range []string{"ach-a", "ach-b", "ach-c"} {
		require.NoError(t, s.CreateUnlock(ctx, &domain.UserAchievement{
			UserID:        "usr-ach2",
			AchievementID: achID,
			UnlockedAt:    time.Now(),
		}))
	}

	unlocks, err := s.ListUnlocks(ctx, "usr-ach2")
	require.NoError(t, err)
	assert.Len(t, unlocks, 3)

	// Another user's list stays empty.
	other, err := s.ListUnlocks(ctx, "usr-ach3")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGrantBadge_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	grant := &domain.UserBadge{
		UserID:   "usr-bdg1",
		BadgeID:  domain.BadgeWeekStreak,
		EarnedAt: time.Now(),
	}

	require.NoError(t, s.GrantBadge(ctx, grant))
	require.NoError(t, s.GrantBadge(ctx, grant))

	badges, err := s.ListUserBadges(ctx, "usr-bdg1")
	require.NoError(t, err)
	assert.Len(t, badges, 1)
	assert.Equal(t, domain.BadgeWeekStreak, badges[0].BadgeID)
}
