package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

const (
	dailyMissionCount  = 3
	weeklyMissionCount = 5

	proofApproveThreshold = 0.8
	proofReviewThreshold  = 0.5
)

// MissionService stamps missions out of templates, tracks their
// progress and runs the proof review pipeline.
type MissionService struct {
	store   *store.Store
	points  *PointsService
	scorer  ProofScorer
	emitter Emitter
	logger  *slog.Logger
	loc     *time.Location
}

// NewMissionService creates a new mission service.
func NewMissionService(s *store.Store, points *PointsService, scorer ProofScorer, emitter Emitter, logger *slog.Logger, loc *time.Location) *MissionService {
	return &MissionService{
		store:   s,
		points:  points,
		scorer:  scorer,
		emitter: emitter,
		logger:  logger,
		loc:     loc,
	}
}

// periodKey returns the generation bucket for a cadence: the calendar
// date for daily, the Sunday-anchored week key for weekly.
func (s *MissionService) periodKey(cadence domain.MissionCadence, at time.Time) string {
	if cadence == domain.CadenceWeekly {
		return domain.WindowWeekly.PeriodKey(at, s.loc)
	}
	return domain.DateKey(at, s.loc)
}

// EnsureGenerated makes sure the user has missions for the current day
// and week, generating them on first call per period. Safe to call on
// every request.
func (s *MissionService) EnsureGenerated(ctx context.Context, userID string, at time.Time) error {
	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return fmt.Errorf("get progress: %w", err)
	}

	for _, cadence := range []domain.MissionCadence{domain.CadenceDaily, domain.CadenceWeekly} {
		if err := s.generate(ctx, userID, progress.Level, cadence, at); err != nil {
			return err
		}
	}
	return nil
}

func (s *MissionService) generate(ctx context.Context, userID string, level int, cadence domain.MissionCadence, at time.Time) error {
	periodKey := s.periodKey(cadence, at)

	count := dailyMissionCount
	expiresAt := at.Add(24 * time.Hour)
	if cadence == domain.CadenceWeekly {
		count = weeklyMissionCount
		expiresAt = at.Add(7 * 24 * time.Hour)
	}

	var eligible []*domain.MissionTemplate
	for tmpl, err := range s.store.Templates.List(ctx) {
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		if !tmpl.Active || tmpl.Cadence != cadence {
			continue
		}
		if tmpl.MinLevel > level || !tmpl.Difficulty.AllowedForLevel(level) {
			continue
		}
		eligible = append(eligible, tmpl)
	}
	if len(eligible) == 0 {
		return nil
	}

	// Deterministic per (user, period) so retries pick the same set.
	slices.SortFunc(eligible, func(a, b *domain.MissionTemplate) int {
		return strings.Compare(a.ID, b.ID)
	})
	seed := fnv.New64a()
	fmt.Fprintf(seed, "%s:%s:%s", userID, cadence, periodKey)
	rng := rand.New(rand.NewPCG(seed.Sum64(), 0))
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > count {
		eligible = eligible[:count]
	}

	batch := make([]*domain.Mission, 0, len(eligible))
	for _, tmpl := range eligible {
		missionID, err := id.Generate("msn")
		if err != nil {
			return fmt.Errorf("generate mission ID: %w", err)
		}

		rewardXP, rewardCoins := tmpl.RewardXP, tmpl.RewardCoins
		if cadence == domain.CadenceWeekly {
			// Weekly goals pay half again over the template rate.
			rewardXP = rewardXP * 3 / 2
			rewardCoins = rewardCoins * 3 / 2
		}

		mission := &domain.Mission{
			Base:        domain.Base{ID: missionID},
			UserID:      userID,
			TemplateID:  tmpl.ID,
			Type:        tmpl.Type,
			Cadence:     cadence,
			Difficulty:  tmpl.Difficulty,
			Title:       tmpl.Title,
			Description: tmpl.Description,
			TargetValue: tmpl.TargetValue,
			RewardXP:    rewardXP,
			RewardCoins: rewardCoins,
			Status:      domain.MissionActive,
			PeriodKey:   periodKey,
			ExpiresAt:   expiresAt,
		}
		mission.InitTimestamps()
		batch = append(batch, mission)
	}

	err := s.store.CreateMissions(ctx, userID, cadence, periodKey, batch)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil // already generated for this period
		}
		return fmt.Errorf("create %s missions: %w", cadence, err)
	}

	s.logger.Info("missions generated",
		"userID", userID,
		"cadence", string(cadence),
		"periodKey", periodKey,
		"count", len(batch))

	return nil
}

// List returns the user's missions for the current day and week,
// generating them first if the periods are fresh.
func (s *MissionService) List(ctx context.Context, userID string, at time.Time) ([]*domain.Mission, error) {
	if err := s.EnsureGenerated(ctx, userID, at); err != nil {
		return nil, err
	}

	var all []*domain.Mission
	for _, cadence := range []domain.MissionCadence{domain.CadenceDaily, domain.CadenceWeekly} {
		missions, err := s.store.ListMissions(ctx, userID, cadence, s.periodKey(cadence, at))
		if err != nil {
			return nil, fmt.Errorf("list %s missions: %w", cadence, err)
		}
		all = append(all, missions...)
	}
	return all, nil
}

// ApplyDeltas advances every active mission matching the given goal
// deltas and pays out the ones that complete. Used by the orchestrator;
// expired missions are skipped (the sweep flips their status).
func (s *MissionService) ApplyDeltas(ctx context.Context, userID string, deltas []domain.MissionDelta, at time.Time) ([]*domain.Mission, error) {
	var completed []*domain.Mission

	for _, delta := range deltas {
		if delta.Delta <= 0 {
			continue
		}

		missions, err := s.store.ListActiveMissionsByType(ctx, userID, delta.Type)
		if err != nil {
			return nil, fmt.Errorf("list active missions: %w", err)
		}

		for _, m := range missions {
			if m.IsExpired(at) {
				continue
			}

			updated, err := s.store.UpdateMission(ctx, userID, m.ID, func(mission *domain.Mission) error {
				if mission.Status != domain.MissionActive {
					return nil
				}
				advance(mission, delta.Delta, at)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("advance mission: %w", err)
			}

			if updated.Status == domain.MissionCompleted && m.Status == domain.MissionActive && updated.Progress >= updated.TargetValue {
				if err := s.payout(ctx, userID, updated); err != nil {
					return nil, err
				}
				completed = append(completed, updated)
			}
		}
	}

	return completed, nil
}

// advance clamps progress to the target and flips to completed on
// reaching it.
func advance(m *domain.Mission, delta int, at time.Time) {
	m.Progress += delta
	if m.Progress >= m.TargetValue {
		m.Progress = m.TargetValue
		m.Status = domain.MissionCompleted
		m.CompletedAt = at
	}
}

// payout pays a completed mission's rewards and bumps the aggregate.
func (s *MissionService) payout(ctx context.Context, userID string, m *domain.Mission) error {
	if m.RewardXP != 0 || m.RewardCoins != 0 {
		if _, err := s.points.Award(ctx, AwardRequest{
			UserID:      userID,
			Points:      m.RewardXP,
			Coins:       m.RewardCoins,
			Source:      domain.PointsSourceMission,
			SourceID:    m.ID,
			Description: m.Title,
		}); err != nil {
			return fmt.Errorf("pay mission reward: %w", err)
		}
	}

	if _, err := s.store.UpdateProgress(ctx, userID, func(p *domain.UserProgress) error {
		p.MissionsCompleted++
		return nil
	}); err != nil {
		return fmt.Errorf("bump missions completed: %w", err)
	}

	s.logger.Info("mission completed",
		"userID", userID,
		"missionID", m.ID,
		"rewardXP", m.RewardXP,
		"rewardCoins", m.RewardCoins)

	emit(s.emitter, sse.NewMissionCompletedEvent(userID, m))
	return nil
}

// RecordProgress advances one mission directly. ExpiredState when the
// mission lapsed or is no longer active.
func (s *MissionService) RecordProgress(ctx context.Context, userID, missionID string, delta int, at time.Time) (*domain.Mission, error) {
	if delta <= 0 {
		return nil, domainerrors.Validation("delta must be positive")
	}

	wasActive := false
	updated, err := s.store.UpdateMission(ctx, userID, missionID, func(m *domain.Mission) error {
		if m.Status != domain.MissionActive || m.IsExpired(at) {
			return domainerrors.ExpiredState("mission no longer accepts progress")
		}
		wasActive = true
		advance(m, delta, at)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("mission")
		}
		return nil, err
	}

	if wasActive && updated.Status == domain.MissionCompleted {
		if err := s.payout(ctx, userID, updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// SubmitProof runs the scorer over a submitted proof. High scores
// auto-approve and complete the mission, mid scores park it for manual
// review, low scores reject and leave the mission active.
func (s *MissionService) SubmitProof(ctx context.Context, userID, missionID, proofRef string, at time.Time) (domain.ProofVerdict, *domain.Mission, error) {
	if strings.TrimSpace(proofRef) == "" {
		return "", nil, domainerrors.Validation("proof reference is required")
	}

	mission, err := s.store.GetMission(ctx, userID, missionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, domainerrors.NotFound("mission")
		}
		return "", nil, fmt.Errorf("get mission: %w", err)
	}
	if mission.Status != domain.MissionActive || mission.IsExpired(at) {
		return "", nil, domainerrors.ExpiredState("mission no longer accepts proof")
	}

	score, err := s.scorer.Score(ctx, mission, proofRef)
	if err != nil {
		return "", nil, fmt.Errorf("score proof: %w", err)
	}

	verdict := domain.ProofRejected
	switch {
	case score >= proofApproveThreshold:
		verdict = domain.ProofApproved
	case score >= proofReviewThreshold:
		verdict = domain.ProofNeedsReview
	}

	updated, err := s.store.UpdateMission(ctx, userID, missionID, func(m *domain.Mission) error {
		if m.Status != domain.MissionActive {
			return domainerrors.ExpiredState("mission no longer accepts proof")
		}
		m.ProofRef = proofRef
		m.ProofScore = score

		switch verdict {
		case domain.ProofApproved:
			advance(m, 1, at)
		case domain.ProofNeedsReview:
			m.Status = domain.MissionNeedsReview
		case domain.ProofRejected:
			// stays active; the user may submit a better proof
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("proof scored",
		"userID", userID,
		"missionID", missionID,
		"score", score,
		"verdict", string(verdict))

	if verdict == domain.ProofApproved && updated.Status == domain.MissionCompleted {
		if err := s.payout(ctx, userID, updated); err != nil {
			return "", nil, err
		}
	}

	return verdict, updated, nil
}

// ManualVerify resolves a mission parked in needs_review. Approval
// counts the proof as progress and pays out on completion; rejection
// returns the mission to active with the proof cleared.
func (s *MissionService) ManualVerify(ctx context.Context, reviewer *domain.User, userID, missionID string, approve bool, at time.Time) (*domain.Mission, error) {
	if !reviewer.CanReview() {
		return nil, domainerrors.Forbidden("mission review requires a teacher or admin")
	}

	updated, err := s.store.UpdateMission(ctx, userID, missionID, func(m *domain.Mission) error {
		if m.Status == domain.MissionExpired || m.IsExpired(at) {
			return domainerrors.ExpiredState("mission expired before review")
		}
		if m.Status != domain.MissionNeedsReview {
			return domainerrors.Conflict("mission is not awaiting review")
		}

		m.ReviewedBy = reviewer.ID
		if approve {
			m.Status = domain.MissionActive
			advance(m, 1, at)
		} else {
			m.Status = domain.MissionActive
			m.ProofRef = ""
			m.ProofScore = 0
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("mission")
		}
		return nil, err
	}

	s.logger.Info("mission manually reviewed",
		"reviewerID", reviewer.ID,
		"userID", userID,
		"missionID", missionID,
		"approved", approve)

	if approve && updated.Status == domain.MissionCompleted {
		if err := s.payout(ctx, userID, updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Sweep expires past-due missions. Run periodically by the jobs
// container.
func (s *MissionService) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.store.ExpireMissions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire missions: %w", err)
	}
	if expired > 0 {
		s.logger.Info("mission sweep", "expired", expired)
	}
	return expired, nil
}
