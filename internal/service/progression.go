package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// ProgressionService is the orchestrator: one reported activity fans
// out across the streak, the ledger, missions, the leaderboard and
// achievements in a fixed order.
type ProgressionService struct {
	store        *store.Store
	points       *PointsService
	streaks      *StreakService
	missions     *MissionService
	leaderboard  *LeaderboardService
	achievements *AchievementService
	logger       *slog.Logger
	loc          *time.Location
}

// NewProgressionService creates the orchestrator over the domain services.
func NewProgressionService(
	s *store.Store,
	points *PointsService,
	streaks *StreakService,
	missions *MissionService,
	leaderboard *LeaderboardService,
	achievements *AchievementService,
	logger *slog.Logger,
	loc *time.Location,
) *ProgressionService {
	return &ProgressionService{
		store:        s,
		points:       points,
		streaks:      streaks,
		missions:     missions,
		leaderboard:  leaderboard,
		achievements: achievements,
		logger:       logger,
		loc:          loc,
	}
}

// ProgressionResult summarizes everything one activity report caused.
type ProgressionResult struct {
	AlreadyCounted       bool                      `json:"already_counted,omitempty"`
	BasePoints           int                       `json:"base_points"`
	Multiplier           float64                   `json:"multiplier"`
	PointsAwarded        int                       `json:"points_awarded"`
	LeveledUp            bool                      `json:"leveled_up,omitempty"`
	NewLevel             int                       `json:"new_level,omitempty"`
	LevelUpCoins         int                       `json:"level_up_coins,omitempty"`
	Streak               *domain.Streak            `json:"streak"`
	StreakTransition     domain.StreakTransition   `json:"streak_transition,omitempty"`
	MilestonesHit        []int                     `json:"milestones_hit,omitempty"`
	MissionsCompleted    []*domain.Mission         `json:"missions_completed,omitempty"`
	AchievementsUnlocked []*domain.Achievement     `json:"achievements_unlocked,omitempty"`
	Progress             *domain.UserProgress      `json:"progress"`
	Entry                *domain.PointsLedgerEntry `json:"-"`
}

// activitySources maps reported activity types onto ledger sources.
var activitySources = map[domain.ActivityType]domain.PointsSource{
	domain.ActivityLessonCompleted: domain.PointsSourceLesson,
	domain.ActivityQuizCompleted:   domain.PointsSourceQuiz,
	domain.ActivityLogin:           domain.PointsSourceLogin,
	domain.ActivityRecycleLogged:   domain.PointsSourceRecycle,
	domain.ActivityEcoAction:       domain.PointsSourceEcoAction,
}

// ReportActivity processes one activity event end to end. The streak
// is touched first so the point multiplier sees the post-transition
// length and milestone rewards ride the same report.
func (s *ProgressionService) ReportActivity(ctx context.Context, userID string, event domain.ActivityEvent) (*ProgressionResult, error) {
	if !event.Type.Valid() {
		return nil, domainerrors.Validationf("unknown activity type %q", event.Type)
	}
	if event.Type == domain.ActivityQuizCompleted && (event.MaxScore <= 0 || event.Score < 0 || event.Score > event.MaxScore) {
		return nil, domainerrors.Validation("quiz events need a score between 0 and max_score")
	}
	if event.Attempt < 0 || event.DurationSec < 0 {
		return nil, domainerrors.Validation("attempt and duration_sec cannot be negative")
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	today := domain.DateKey(at, s.loc)

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Logins only count once per calendar day.
	if event.Type == domain.ActivityLogin {
		progress, err := s.store.GetProgress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get progress: %w", err)
		}
		if progress.LastLoginDate == today {
			streak, err := s.store.GetStreak(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("get streak: %w", err)
			}
			return &ProgressionResult{
				AlreadyCounted: true,
				Multiplier:     domain.StreakMultiplier(streak.Current),
				Streak:         streak,
				Progress:       progress,
			}, nil
		}
	}

	if err := s.missions.EnsureGenerated(ctx, userID, at); err != nil {
		return nil, err
	}

	// 1. Streak first: the multiplier reads the post-touch length.
	touch, err := s.streaks.Touch(ctx, userID, at)
	if err != nil {
		return nil, err
	}

	// 2. Aggregates for this activity.
	base := event.BasePoints()
	if event.Type == domain.ActivityLogin {
		progress, err := s.store.UpdateProgress(ctx, userID, func(p *domain.UserProgress) error {
			p.LoginCount++
			p.LastLoginDate = today
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("bump login count: %w", err)
		}
		base += domain.LoginCountBonus(progress.LoginCount)
	}
	if _, err := s.store.UpdateProgress(ctx, userID, func(p *domain.UserProgress) error {
		switch event.Type {
		case domain.ActivityLessonCompleted:
			p.LessonsCompleted++
		case domain.ActivityQuizCompleted:
			p.QuizzesCompleted++
			if event.IsPerfectQuiz() {
				p.PerfectQuizzes++
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("bump activity counters: %w", err)
	}

	// 3. Points through the ledger, multiplied and floored.
	multiplier := domain.StreakMultiplier(touch.Streak.Current)
	awarded := int(float64(base) * multiplier)

	award, err := s.points.Award(ctx, AwardRequest{
		UserID:      userID,
		Points:      awarded,
		Source:      activitySources[event.Type],
		SourceID:    event.SubjectID,
		Description: string(event.Type),
	})
	if err != nil {
		return nil, err
	}

	// 4. Mission progress, including XP-goal missions fed by the award.
	deltas := event.MissionDeltas()
	xpEarned := awarded + touch.MilestoneXP
	if xpEarned > 0 {
		deltas = append(deltas, domain.MissionDelta{Type: domain.MissionEarnXP, Delta: xpEarned})
	}
	completed, err := s.missions.ApplyDeltas(ctx, userID, deltas, at)
	if err != nil {
		return nil, err
	}

	// 5. Leaderboard: everything this report earned.
	scoreDelta := awarded + touch.MilestoneXP
	for _, m := range completed {
		scoreDelta += m.RewardXP
	}
	if err := s.leaderboard.Record(ctx, user, scoreDelta, at); err != nil {
		return nil, err
	}

	// 6. Achievements over the fresh aggregates.
	snap, err := s.achievements.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.achievements.Evaluate(ctx, userID, snap, at)
	if err != nil {
		return nil, err
	}
	achievementXP := 0
	for _, a := range unlocked {
		achievementXP += a.RewardXP
	}
	if achievementXP > 0 {
		if err := s.leaderboard.Record(ctx, user, achievementXP, at); err != nil {
			return nil, err
		}
	}

	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	s.logger.Info("activity processed",
		"userID", userID,
		"type", string(event.Type),
		"basePoints", base,
		"multiplier", multiplier,
		"awarded", awarded,
		"streak", touch.Streak.Current,
		"missionsCompleted", len(completed),
		"achievementsUnlocked", len(unlocked))

	return &ProgressionResult{
		BasePoints:           base,
		Multiplier:           multiplier,
		PointsAwarded:        awarded,
		LeveledUp:            award.LeveledUp,
		NewLevel:             award.NewLevel,
		LevelUpCoins:         award.CoinBonus,
		Streak:               touch.Streak,
		StreakTransition:     touch.Transition,
		MilestonesHit:        touch.Milestones,
		MissionsCompleted:    completed,
		AchievementsUnlocked: unlocked,
		Progress:             progress,
		Entry:                award.Entry,
	}, nil
}

// RecordLogin reports a login activity for now. Called by the auth
// service after a successful login; the daily-once guard makes it safe
// to call on every login.
func (s *ProgressionService) RecordLogin(ctx context.Context, userID string, at time.Time) (*ProgressionResult, error) {
	return s.ReportActivity(ctx, userID, domain.ActivityEvent{
		Type:       domain.ActivityLogin,
		OccurredAt: at,
	})
}
