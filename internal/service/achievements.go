package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// AchievementService evaluates unlock conditions against the user's
// aggregates and pays out first-time unlocks.
type AchievementService struct {
	store   *store.Store
	points  *PointsService
	emitter Emitter
	logger  *slog.Logger
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(s *store.Store, points *PointsService, emitter Emitter, logger *slog.Logger) *AchievementService {
	return &AchievementService{store: s, points: points, emitter: emitter, logger: logger}
}

// Snapshot builds the aggregate view achievement conditions evaluate
// against.
func (s *AchievementService) Snapshot(ctx context.Context, userID string) (domain.ProgressSnapshot, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return domain.ProgressSnapshot{}, fmt.Errorf("get progress: %w", err)
	}
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return domain.ProgressSnapshot{}, fmt.Errorf("get streak: %w", err)
	}

	return domain.ProgressSnapshot{
		TotalXP:           progress.TotalXP,
		Level:             progress.Level,
		StreakDays:        streak.Current,
		LessonsCompleted:  progress.LessonsCompleted,
		QuizzesCompleted:  progress.QuizzesCompleted,
		MissionsCompleted: progress.MissionsCompleted,
		PerfectQuizzes:    progress.PerfectQuizzes,
		LoginCount:        progress.LoginCount,
	}, nil
}

// Evaluate checks every definition against the snapshot and unlocks
// the ones newly met. Prerequisite chains can cascade within one call:
// an unlock earned this pass can satisfy another definition's
// prerequisite, so passes repeat until nothing new unlocks. Duplicate
// unlocks lose benignly against the store's uniqueness key.
func (s *AchievementService) Evaluate(ctx context.Context, userID string, snap domain.ProgressSnapshot, at time.Time) ([]*domain.Achievement, error) {
	unlocks, err := s.store.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
	}

	var definitions []*domain.Achievement
	for def, err := range s.store.Achievements.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list achievements: %w", err)
		}
		definitions = append(definitions, def)
	}

	var newlyUnlocked []*domain.Achievement
	for changed := true; changed; {
		changed = false

		for _, def := range definitions {
			if unlocked[def.ID] {
				continue
			}
			if !prerequisitesMet(def, unlocked) {
				continue
			}
			if !def.Condition.Met(snap) {
				continue
			}

			err := s.store.CreateUnlock(ctx, &domain.UserAchievement{
				UserID:        userID,
				AchievementID: def.ID,
				UnlockedAt:    at,
			})
			if errors.Is(err, store.ErrAlreadyExists) {
				unlocked[def.ID] = true // lost a race, not an error
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("create unlock: %w", err)
			}

			if def.RewardXP > 0 || def.RewardCoins > 0 {
				if _, err := s.points.Award(ctx, AwardRequest{
					UserID:      userID,
					Points:      def.RewardXP,
					Coins:       def.RewardCoins,
					Source:      domain.PointsSourceAchievement,
					SourceID:    def.ID,
					Description: def.Name,
				}); err != nil {
					return nil, fmt.Errorf("pay achievement reward: %w", err)
				}
			}

			if def.BadgeID != "" {
				if err := s.store.GrantBadge(ctx, &domain.UserBadge{
					UserID:   userID,
					BadgeID:  def.BadgeID,
					EarnedAt: at,
				}); err != nil {
					return nil, fmt.Errorf("grant achievement badge: %w", err)
				}
			}

			s.logger.Info("achievement unlocked",
				"userID", userID,
				"achievementID", def.ID,
				"name", def.Name)

			emit(s.emitter, sse.NewAchievementUnlockedEvent(userID, def))

			unlocked[def.ID] = true
			newlyUnlocked = append(newlyUnlocked, def)
			changed = true
		}
	}

	return newlyUnlocked, nil
}

func prerequisitesMet(def *domain.Achievement, unlocked map[string]bool) bool {
	for _, prereq := range def.Prerequisites {
		if !unlocked[prereq] {
			return false
		}
	}
	return true
}

// AchievementView is one definition plus the user's unlock state.
type AchievementView struct {
	Achievement *domain.Achievement `json:"achievement"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  time.Time           `json:"unlocked_at,omitzero"`
}

// List returns every visible definition with the user's unlock state.
// Hidden achievements only appear once unlocked.
func (s *AchievementService) List(ctx context.Context, userID string) ([]*AchievementView, error) {
	unlocks, err := s.store.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	var views []*AchievementView
	for def, err := range s.store.Achievements.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list achievements: %w", err)
		}
		at, unlocked := unlockedAt[def.ID]
		if def.Hidden && !unlocked {
			continue
		}
		views = append(views, &AchievementView{
			Achievement: def,
			Unlocked:    unlocked,
			UnlockedAt:  at,
		})
	}
	return views, nil
}

// BadgeView is one badge definition plus whether the user earned it.
type BadgeView struct {
	Badge    *domain.Badge `json:"badge"`
	Earned   bool          `json:"earned"`
	EarnedAt time.Time     `json:"earned_at,omitzero"`
}

// Badges lists every badge with the user's earned state.
func (s *AchievementService) Badges(ctx context.Context, userID string) ([]*BadgeView, error) {
	grants, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedAt := make(map[string]time.Time, len(grants))
	for _, g := range grants {
		earnedAt[g.BadgeID] = g.EarnedAt
	}

	var views []*BadgeView
	for badge, err := range s.store.Badges.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list badges: %w", err)
		}
		at, earned := earnedAt[badge.ID]
		views = append(views, &BadgeView{Badge: badge, Earned: earned, EarnedAt: at})
	}
	return views, nil
}
