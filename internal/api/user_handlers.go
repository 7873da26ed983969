package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/profile",
		Summary:     "Get progression profile",
		Description: "Returns the user's combined progression view: progress, streak, badges and level position",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLedgerHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/ledger",
		Summary:     "Get points ledger history",
		Description: "Returns the user's points ledger entries, newest first, with cursor pagination",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLedgerHistory)
}

// === DTOs ===

// GetUserOutput wraps the current user response for Huma.
type GetUserOutput struct {
	Body UserResponse
}

// GetProfileOutput wraps the profile response for Huma.
type GetProfileOutput struct {
	Body *service.Profile
}

// LedgerHistoryInput holds pagination parameters for ledger reads.
type LedgerHistoryInput struct {
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"100" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page"`
}

// LedgerHistoryResponse is one page of ledger entries.
type LedgerHistoryResponse struct {
	Entries    []*domain.PointsLedgerEntry `json:"entries" doc:"Ledger entries, newest first"`
	NextCursor string                      `json:"next_cursor,omitempty" doc:"Cursor for the next page, empty when exhausted"`
}

// LedgerHistoryOutput wraps the ledger page for Huma.
type LedgerHistoryOutput struct {
	Body LedgerHistoryResponse
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*GetUserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GetUserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*GetProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.User.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GetProfileOutput{Body: profile}, nil
}

func (s *Server) handleGetLedgerHistory(ctx context.Context, input *LedgerHistoryInput) (*LedgerHistoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, next, err := s.services.Points.History(ctx, userID, input.Limit, input.Cursor)
	if err != nil {
		return nil, err
	}

	return &LedgerHistoryOutput{
		Body: LedgerHistoryResponse{
			Entries:    entries,
			NextCursor: next,
		},
	}, nil
}
