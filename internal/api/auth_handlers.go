package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new user",
		Description: "Creates a student account and returns an access token.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user, records the daily login activity and returns an access token.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"User email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"Display name"`
	Grade       string `json:"grade,omitempty" validate:"omitempty,oneof=6 7 8 9 10 11 12" doc:"School grade for leaderboard scoping"`
	College     string `json:"college,omitempty" validate:"omitempty,max=200" doc:"Institution name for leaderboard scoping"`
}

// RegisterInput wraps the register request with headers for Huma.
type RegisterInput struct {
	Body          RegisterRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"User email"`
	Password string `json:"password" validate:"required,max=1024" doc:"User password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// UserResponse contains user information in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"User email"`
	Role        string    `json:"role" doc:"User role (student, teacher, admin)"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Grade       string    `json:"grade,omitempty" doc:"School grade"`
	College     string    `json:"college,omitempty" doc:"Institution name"`
	Points      int       `json:"points" doc:"Spendable point balance"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	LastLoginAt time.Time `json:"last_login_at,omitzero" doc:"Last login timestamp"`
}

// AuthResponse contains the access token and user info.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry timestamp"`
	User        UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	if !s.authRateLimiter.Allow(extractIP(input.XForwardedFor, input.XRealIP)) {
		return nil, huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
		Grade:       input.Body.Grade,
		College:     input.Body.College,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	if !s.authRateLimiter.Allow(extractIP(input.XForwardedFor, input.XRealIP)) {
		return nil, huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   resp.ExpiresAt,
		User:        mapUserResponse(resp.User),
	}
}

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		DisplayName: user.DisplayName,
		Grade:       user.Grade,
		College:     user.College,
		Points:      user.Points,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
