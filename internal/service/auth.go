package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/store"
	"github.com/ecomindsapp/ecominds-server/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store       *store.Store
	tokens      *auth.TokenService
	validator   *validation.Validator
	progression *ProgressionService
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, validator *validation.Validator, progression *ProgressionService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:       s,
		tokens:      tokens,
		validator:   validator,
		progression: progression,
		logger:      logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Grade       string `json:"grade,omitempty" validate:"omitempty,oneof=6 7 8 9 10 11 12"`
	College     string `json:"college,omitempty" validate:"omitempty,max=200"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and the authenticated user.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates a student account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Base:         domain.Base{ID: userID},
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleStudent,
		DisplayName:  req.DisplayName,
		Grade:        req.Grade,
		College:      req.College,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "userID", userID, "email", user.Email)

	return s.issueToken(user)
}

// Login authenticates a user and reports the daily login activity.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = now
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update last login time", "userID", user.ID, "error", err)
	}

	// The login itself is a progression event. A failure here must not
	// block the login.
	if s.progression != nil {
		if _, err := s.progression.RecordLogin(ctx, user.ID, now); err != nil {
			s.logger.Warn("failed to record login activity", "userID", user.ID, "error", err)
		}
	}

	return s.issueToken(user)
}

// Verify validates an access token and returns its claims.
func (s *AuthService) Verify(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	// Never hand the hash back out.
	sanitized := *user
	sanitized.PasswordHash = ""

	return &AuthResponse{
		User:        &sanitized,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokens.AccessTokenDuration()),
	}, nil
}
