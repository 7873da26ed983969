package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// PointsService owns the points ledger: every XP or coin movement in
// the system goes through Award or Spend, so the ledger stays the
// single source of truth for balances.
type PointsService struct {
	store   *store.Store
	emitter Emitter
	logger  *slog.Logger
}

// NewPointsService creates a new points service.
func NewPointsService(s *store.Store, emitter Emitter, logger *slog.Logger) *PointsService {
	return &PointsService{store: s, emitter: emitter, logger: logger}
}

// AwardRequest describes one ledger append.
type AwardRequest struct {
	UserID      string
	Points      int // signed XP delta
	Coins       int // signed coin delta, applied alongside the entry
	Source      domain.PointsSource
	SourceID    string
	Description string
}

// AwardResult reports what an award did, including any level-up it caused.
type AwardResult struct {
	Entry     *domain.PointsLedgerEntry
	Progress  *domain.UserProgress
	LeveledUp bool
	NewLevel  int
	CoinBonus int
}

// Award appends a ledger entry and moves the balance mirrors in one
// transaction. Every award needs a non-zero movement and a description;
// an award with no point delta moves coins only and skips the ledger,
// which records XP movement exclusively. On a level-up it pays the coin
// bonus for every level crossed and emits a level.up event.
func (s *PointsService) Award(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	if !req.Source.Valid() {
		return nil, domainerrors.Validationf("unknown points source %q", req.Source)
	}
	if req.Points == 0 && req.Coins == 0 {
		return nil, domainerrors.Validation("award must move points or coins")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domainerrors.Validation("description is required")
	}

	if req.Points == 0 {
		return s.awardCoins(ctx, req)
	}

	before, err := s.store.GetProgress(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	entryID, err := id.Generate("led")
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}

	entry := &domain.PointsLedgerEntry{
		ID:          entryID,
		UserID:      req.UserID,
		Points:      req.Points,
		Source:      req.Source,
		SourceID:    req.SourceID,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	progress, err := s.store.AppendLedgerEntry(ctx, entry, req.Coins)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil, domainerrors.NotFound("user")
		case errors.Is(err, store.ErrInsufficientPoints):
			return nil, domainerrors.InsufficientResource("points balance too low")
		case errors.Is(err, store.ErrInsufficientCoins):
			return nil, domainerrors.InsufficientResource("coin balance too low")
		default:
			return nil, fmt.Errorf("append ledger entry: %w", err)
		}
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	emit(s.emitter, sse.NewPointsAwardedEvent(req.UserID, req.Points, req.Source, user.Points, progress.TotalXP))

	result := &AwardResult{Entry: entry, Progress: progress}

	if progress.Level > before.Level {
		bonus := 0
		for level := before.Level + 1; level <= progress.Level; level++ {
			bonus += domain.LevelUpCoinBonus(level)
		}

		progress, err = s.store.UpdateProgress(ctx, req.UserID, func(p *domain.UserProgress) error {
			p.Coins += bonus
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("apply level-up bonus: %w", err)
		}

		result.Progress = progress
		result.LeveledUp = true
		result.NewLevel = progress.Level
		result.CoinBonus = bonus

		s.logger.Info("user leveled up",
			"userID", req.UserID,
			"level", progress.Level,
			"coinBonus", bonus)

		emit(s.emitter, sse.NewLevelUpEvent(req.UserID, progress.Level, bonus))
	}

	return result, nil
}

// awardCoins applies a coin-only movement against the balance mirror.
// Coins cannot change the level, so no level recheck happens here.
func (s *PointsService) awardCoins(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	progress, err := s.store.UpdateProgress(ctx, req.UserID, func(p *domain.UserProgress) error {
		if p.Coins+req.Coins < 0 {
			return store.ErrInsufficientCoins
		}
		p.Coins += req.Coins
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientCoins) {
			return nil, domainerrors.InsufficientResource("coin balance too low")
		}
		return nil, fmt.Errorf("move coins: %w", err)
	}

	return &AwardResult{Progress: progress}, nil
}

// Spend deducts points and coins from a user's balance as a negative
// purchase entry. The ledger stays append-only; refunds are new
// positive entries.
func (s *PointsService) Spend(ctx context.Context, userID string, points, coins int, description string) (*domain.UserProgress, error) {
	if points < 0 || coins < 0 {
		return nil, domainerrors.Validation("spend amounts must not be negative")
	}
	if points == 0 && coins == 0 {
		return nil, domainerrors.Validation("nothing to spend")
	}

	result, err := s.Award(ctx, AwardRequest{
		UserID:      userID,
		Points:      -points,
		Coins:       -coins,
		Source:      domain.PointsSourcePurchase,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	return result.Progress, nil
}

// History pages the user's ledger newest-first. An empty cursor starts
// from the top; the returned cursor is empty on the last page.
func (s *PointsService) History(ctx context.Context, userID string, limit int, cursor string) ([]*domain.PointsLedgerEntry, string, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, next, err := s.store.LedgerHistory(ctx, userID, limit, cursor)
	if err != nil {
		return nil, "", fmt.Errorf("ledger history: %w", err)
	}
	return entries, next, nil
}

// Reconcile recomputes the balance mirrors from the ledger sum.
// Admin backstop for drift; the ledger itself is never rewritten.
func (s *PointsService) Reconcile(ctx context.Context, userID string) (*domain.UserProgress, error) {
	progress, err := s.store.ReconcileBalances(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user")
		}
		return nil, fmt.Errorf("reconcile balances: %w", err)
	}

	s.logger.Info("reconciled balances",
		"userID", userID,
		"totalXP", progress.TotalXP,
		"level", progress.Level)

	return progress, nil
}
