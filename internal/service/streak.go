package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// StreakService tracks consecutive activity days, freezes and the
// one-time milestone rewards.
type StreakService struct {
	store      *store.Store
	points     *PointsService
	emitter    Emitter
	logger     *slog.Logger
	loc        *time.Location
	freezeCost int
	maxFreezes int
}

// NewStreakService creates a new streak service. freezeCost is in
// coins; maxFreezes caps how many a user can hold at once.
func NewStreakService(s *store.Store, points *PointsService, emitter Emitter, logger *slog.Logger, loc *time.Location, freezeCost, maxFreezes int) *StreakService {
	return &StreakService{
		store:      s,
		points:     points,
		emitter:    emitter,
		logger:     logger,
		loc:        loc,
		freezeCost: freezeCost,
		maxFreezes: maxFreezes,
	}
}

// TouchResult reports what one activity day did to the streak.
type TouchResult struct {
	Streak         *domain.Streak
	Transition     domain.StreakTransition
	Milestones     []int // milestones first hit by this touch
	MilestoneXP    int
	MilestoneCoins int
}

// Touch records activity for the calendar day containing at.
// The transition is decided by the whole-day distance between the last
// active date and today: same day is a no-op, the next day extends,
// a single missed day is covered by a freeze when one is held, and
// anything longer resets to 1. Milestones reached by the new length pay
// their one-time rewards through the ledger; a milestone is recorded in
// MilestonesHit only after its reward landed, so a payout failure leaves
// it unrecorded and the next touch pays it instead of forfeiting it.
func (s *StreakService) Touch(ctx context.Context, userID string, at time.Time) (*TouchResult, error) {
	today := domain.DateKey(at, s.loc)

	var transition domain.StreakTransition

	streak, err := s.store.UpdateStreak(ctx, userID, func(st *domain.Streak) error {
		transition = applyTouch(st, today)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}

	result := &TouchResult{
		Streak:     streak,
		Transition: transition,
	}

	// Pay every milestone at or below the current length that has no
	// record yet. This also settles milestones an earlier touch crossed
	// but failed to pay.
	for _, days := range domain.StreakMilestones {
		if days > streak.Current || streak.HasMilestone(days) {
			continue
		}
		reward, ok := domain.RewardForMilestone(days)
		if !ok {
			continue
		}

		if _, err := s.points.Award(ctx, AwardRequest{
			UserID:      userID,
			Points:      reward.XP,
			Coins:       reward.Coins,
			Source:      domain.PointsSourceStreakBonus,
			SourceID:    fmt.Sprintf("streak-%d", days),
			Description: fmt.Sprintf("%d-day streak milestone", days),
		}); err != nil {
			return nil, fmt.Errorf("pay milestone reward: %w", err)
		}

		if reward.BadgeID != "" {
			if err := s.store.GrantBadge(ctx, &domain.UserBadge{
				UserID:   userID,
				BadgeID:  reward.BadgeID,
				EarnedAt: at,
			}); err != nil {
				return nil, fmt.Errorf("grant milestone badge: %w", err)
			}
		}

		milestone := days
		streak, err = s.store.UpdateStreak(ctx, userID, func(st *domain.Streak) error {
			if !st.HasMilestone(milestone) {
				st.MilestonesHit = append(st.MilestonesHit, milestone)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("record milestone: %w", err)
		}

		result.Streak = streak
		result.Milestones = append(result.Milestones, days)
		result.MilestoneXP += reward.XP
		result.MilestoneCoins += reward.Coins

		s.logger.Info("streak milestone hit",
			"userID", userID,
			"days", days,
			"rewardXP", reward.XP,
			"rewardCoins", reward.Coins)

		emit(s.emitter, sse.NewStreakMilestoneEvent(userID, days, reward))
	}

	return result, nil
}

// applyTouch mutates st for an activity on today and returns the
// transition taken. A touch dated before the last active day counts as
// already covered.
func applyTouch(st *domain.Streak, today string) domain.StreakTransition {
	transition := domain.StreakReset

	switch d := domain.DaysBetween(st.LastActiveDate, today); {
	case st.LastActiveDate == "":
		st.Current = 1
		transition = domain.StreakStarted
	case d < 0:
		return domain.StreakUnchanged
	case d == 0:
		return domain.StreakUnchanged
	case d == 1:
		st.Current++
		transition = domain.StreakExtended
	case d == 2 && st.Freezes > 0:
		st.Freezes--
		st.Current++
		transition = domain.StreakFrozen
	default:
		st.Current = 1
	}

	if st.Current > st.Longest {
		st.Longest = st.Current
	}
	st.LastActiveDate = today

	return transition
}

// UseFreeze explicitly spends a held freeze to cover today without
// counting it as activity. The streak length does not grow.
func (s *StreakService) UseFreeze(ctx context.Context, userID string, at time.Time) (*domain.Streak, error) {
	today := domain.DateKey(at, s.loc)

	streak, err := s.store.UpdateStreak(ctx, userID, func(st *domain.Streak) error {
		if st.Freezes <= 0 {
			return domainerrors.InsufficientResource("no streak freezes held")
		}
		if st.LastActiveDate == today {
			return domainerrors.Conflict("streak already covered today")
		}
		st.Freezes--
		st.LastActiveDate = today
		return nil
	})
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, fmt.Errorf("use freeze: %w", err)
	}

	s.logger.Info("streak freeze used", "userID", userID, "remaining", streak.Freezes)
	return streak, nil
}

// PurchaseFreeze buys one streak freeze with coins.
func (s *StreakService) PurchaseFreeze(ctx context.Context, userID string) (*domain.Streak, error) {
	current, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	if current.Freezes >= s.maxFreezes {
		return nil, domainerrors.Validationf("cannot hold more than %d freezes", s.maxFreezes)
	}

	if _, err := s.points.Spend(ctx, userID, 0, s.freezeCost, "streak freeze"); err != nil {
		return nil, err
	}

	streak, err := s.store.UpdateStreak(ctx, userID, func(st *domain.Streak) error {
		st.Freezes++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add freeze: %w", err)
	}

	s.logger.Info("streak freeze purchased",
		"userID", userID,
		"cost", s.freezeCost,
		"held", streak.Freezes)

	return streak, nil
}

// StreakStatus is the read model for a user's streak.
type StreakStatus struct {
	Streak       *domain.Streak `json:"streak"`
	CoveredToday bool           `json:"covered_today"`
	Multiplier   float64        `json:"multiplier"`
	FreezeCost   int            `json:"freeze_cost"`
	MaxFreezes   int            `json:"max_freezes"`
}

// Status returns the streak plus whether today is already covered and
// the multiplier the current length earns.
func (s *StreakService) Status(ctx context.Context, userID string, at time.Time) (*StreakStatus, error) {
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}

	return &StreakStatus{
		Streak:       streak,
		CoveredToday: streak.LastActiveDate == domain.DateKey(at, s.loc),
		Multiplier:   domain.StreakMultiplier(streak.Current),
		FreezeCost:   s.freezeCost,
		MaxFreezes:   s.maxFreezes,
	}, nil
}
