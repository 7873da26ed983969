package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerStreakRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStreak",
		Method:      http.MethodGet,
		Path:        "/api/v1/streak",
		Summary:     "Get streak status",
		Description: "Returns the user's streak, whether today is covered and the current multiplier",
		Tags:        []string{"Streaks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStreak)

	huma.Register(s.api, huma.Operation{
		OperationID: "purchaseStreakFreeze",
		Method:      http.MethodPost,
		Path:        "/api/v1/streak/freezes",
		Summary:     "Purchase a streak freeze",
		Description: "Buys one streak freeze with coins, up to the held-freeze cap",
		Tags:        []string{"Streaks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePurchaseFreeze)

	huma.Register(s.api, huma.Operation{
		OperationID: "useStreakFreeze",
		Method:      http.MethodPost,
		Path:        "/api/v1/streak/freezes/use",
		Summary:     "Use a streak freeze",
		Description: "Consumes a held freeze to cover today without activity",
		Tags:        []string{"Streaks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUseFreeze)
}

// === DTOs ===

// StreakStatusOutput wraps the streak status for Huma.
type StreakStatusOutput struct {
	Body *service.StreakStatus
}

// StreakOutput wraps a bare streak for Huma.
type StreakOutput struct {
	Body *domain.Streak
}

// === Handlers ===

func (s *Server) handleGetStreak(ctx context.Context, _ *struct{}) (*StreakStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	status, err := s.services.Streaks.Status(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	return &StreakStatusOutput{Body: status}, nil
}

func (s *Server) handlePurchaseFreeze(ctx context.Context, _ *struct{}) (*StreakOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	streak, err := s.services.Streaks.PurchaseFreeze(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StreakOutput{Body: streak}, nil
}

func (s *Server) handleUseFreeze(ctx context.Context, _ *struct{}) (*StreakOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	streak, err := s.services.Streaks.UseFreeze(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	return &StreakOutput{Body: streak}, nil
}
