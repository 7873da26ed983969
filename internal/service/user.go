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

// UserService serves user profiles and the combined progress view.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
	loc    *time.Location
}

// NewUserService creates a new user service.
func NewUserService(s *store.Store, logger *slog.Logger, loc *time.Location) *UserService {
	return &UserService{store: s, logger: logger, loc: loc}
}

// Get returns a user without their password hash.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// Profile is the combined progression view of one user.
type Profile struct {
	User       *domain.User         `json:"user"`
	Progress   *domain.UserProgress `json:"progress"`
	Streak     *domain.Streak       `json:"streak"`
	Badges     []*domain.UserBadge  `json:"badges"`
	NextLevel  int                  `json:"next_level"`
	XPIntoLvl  int                  `json:"xp_into_level"`
	XPPerLevel int                  `json:"xp_per_level"`
}

// Profile assembles the user's progression summary.
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	badges, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	into, span := domain.ProgressInLevel(progress.TotalXP)

	return &Profile{
		User:       user,
		Progress:   progress,
		Streak:     streak,
		Badges:     badges,
		NextLevel:  progress.Level + 1,
		XPIntoLvl:  into,
		XPPerLevel: span,
	}, nil
}
