package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/cache"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

const defaultTopLimit = 20

// LeaderboardService serves ranked views over the window scores.
// Scores are authoritative in the store; ranks are recomputed on read
// and cached per (window, period, scope) with a short TTL, invalidated
// eagerly whenever a score lands.
type LeaderboardService struct {
	store  *store.Store
	cache  cache.Cache
	logger *slog.Logger
	loc    *time.Location
	ttl    time.Duration
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(s *store.Store, c cache.Cache, logger *slog.Logger, loc *time.Location, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{store: s, cache: c, logger: logger, loc: loc, ttl: ttl}
}

func rankedCacheKey(window domain.LeaderboardWindow, periodKey string, scope domain.LeaderboardScope, scopeValue string) string {
	return fmt.Sprintf("lb:%s:%s:%s:%s", window, periodKey, scope, scopeValue)
}

// Record adds an earned-XP delta to all three windows for the period
// containing at, then drops the affected cached rankings.
func (s *LeaderboardService) Record(ctx context.Context, user *domain.User, delta int, at time.Time) error {
	if delta <= 0 {
		return nil
	}

	if err := s.store.AddScore(ctx, user, delta, at, s.loc); err != nil {
		return fmt.Errorf("add score: %w", err)
	}

	if s.cache != nil {
		for _, window := range domain.AllWindows {
			prefix := fmt.Sprintf("lb:%s:%s:", window, window.PeriodKey(at, s.loc))
			if err := s.cache.Invalidate(prefix); err != nil {
				s.logger.Warn("leaderboard cache invalidation failed",
					"prefix", prefix,
					"error", err)
			}
		}
	}

	return nil
}

// Top returns the ranked leaderboard page for a window and scope.
// scopeValue is the grade or college for the cohort scopes and ignored
// for global.
func (s *LeaderboardService) Top(ctx context.Context, window domain.LeaderboardWindow, scope domain.LeaderboardScope, scopeValue string, limit int, at time.Time) ([]*domain.LeaderboardEntry, error) {
	if !window.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard window %q", window)
	}
	if !scope.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard scope %q", scope)
	}
	if scope != domain.ScopeGlobal && scopeValue == "" {
		return nil, domainerrors.Validationf("%s scope requires a value", scope)
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}

	ranked, err := s.ranked(ctx, window, scope, scopeValue, at)
	if err != nil {
		return nil, err
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ranked returns the full ranked list for a cohort, from cache when
// fresh.
func (s *LeaderboardService) ranked(ctx context.Context, window domain.LeaderboardWindow, scope domain.LeaderboardScope, scopeValue string, at time.Time) ([]*domain.LeaderboardEntry, error) {
	periodKey := window.PeriodKey(at, s.loc)
	key := rankedCacheKey(window, periodKey, scope, scopeValue)

	if s.cache != nil {
		var cached []*domain.LeaderboardEntry
		if err := s.cache.Get(key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("leaderboard cache read failed", "key", key, "error", err)
		}
	}

	entries, err := s.store.ListWindow(ctx, window, periodKey)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}

	filtered := entries[:0]
	for _, e := range entries {
		switch scope {
		case domain.ScopeGrade:
			if e.Grade != scopeValue {
				continue
			}
		case domain.ScopeCollege:
			if e.College != scopeValue {
				continue
			}
		case domain.ScopeGlobal:
		}
		filtered = append(filtered, e)
	}

	// Highest score first; equal scores order by user ID so pages and
	// tie-broken ranks are stable between reads.
	slices.SortFunc(filtered, func(a, b *domain.LeaderboardEntry) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	domain.AssignRanks(filtered)

	if s.cache != nil {
		if err := s.cache.Set(key, filtered, s.ttl); err != nil {
			s.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
		}
	}

	return filtered, nil
}

// Standing returns the user's own row, rank and percentile in a window.
// A user who has not scored this period reads as a zero entry ranked
// after everyone on the board.
func (s *LeaderboardService) Standing(ctx context.Context, user *domain.User, window domain.LeaderboardWindow, scope domain.LeaderboardScope, at time.Time) (*domain.Standing, error) {
	scopeValue := ""
	switch scope {
	case domain.ScopeGrade:
		scopeValue = user.Grade
	case domain.ScopeCollege:
		scopeValue = user.College
	case domain.ScopeGlobal:
	default:
		return nil, domainerrors.Validationf("unknown leaderboard scope %q", scope)
	}

	ranked, err := s.ranked(ctx, window, scope, scopeValue, at)
	if err != nil {
		return nil, err
	}

	total := len(ranked)
	var entry *domain.LeaderboardEntry
	for _, e := range ranked {
		if e.UserID == user.ID {
			entry = e
			break
		}
	}

	synthetic := entry == nil
	if synthetic {
		// Lazy zero entry: scored nothing this period.
		lastRank := 0
		if total > 0 {
			lastRank = ranked[total-1].Rank
		}
		entry = &domain.LeaderboardEntry{
			UserID:      user.ID,
			DisplayName: user.Name(),
			Window:      window,
			PeriodKey:   window.PeriodKey(at, s.loc),
			Score:       0,
			Rank:        lastRank + 1,
			Grade:       user.Grade,
			College:     user.College,
		}
		total++
	}

	atOrBelow := 0
	for _, e := range ranked {
		if e.Rank >= entry.Rank {
			atOrBelow++
		}
	}
	if synthetic {
		atOrBelow++ // the zero row itself
	}

	return &domain.Standing{
		Entry:      *entry,
		TotalUsers: total,
		Percentile: float64(atOrBelow) / float64(total) * 100,
	}, nil
}

// Refresh rewarms the global ranked caches for every window. Run
// periodically so first reads after the TTL stay cheap.
func (s *LeaderboardService) Refresh(ctx context.Context, at time.Time) error {
	for _, window := range domain.AllWindows {
		if _, err := s.ranked(ctx, window, domain.ScopeGlobal, "", at); err != nil {
			return fmt.Errorf("refresh %s ranking: %w", window, err)
		}
	}
	return nil
}
