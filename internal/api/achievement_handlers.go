package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerAchievementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAchievements",
		Method:      http.MethodGet,
		Path:        "/api/v1/achievements",
		Summary:     "List achievements",
		Description: "Returns every visible achievement with the user's unlock state. Hidden achievements only appear once unlocked.",
		Tags:        []string{"Achievements"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAchievements)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBadges",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges",
		Summary:     "List badges",
		Description: "Returns every badge with the user's earned state",
		Tags:        []string{"Achievements"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBadges)
}

// === DTOs ===

// ListAchievementsOutput wraps the achievement list for Huma.
type ListAchievementsOutput struct {
	Body struct {
		Achievements []*service.AchievementView `json:"achievements" doc:"Definitions with unlock state"`
	}
}

// ListBadgesOutput wraps the badge list for Huma.
type ListBadgesOutput struct {
	Body struct {
		Badges []*service.BadgeView `json:"badges" doc:"Definitions with earned state"`
	}
}

// === Handlers ===

func (s *Server) handleListAchievements(ctx context.Context, _ *struct{}) (*ListAchievementsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.services.Achievements.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ListAchievementsOutput{}
	out.Body.Achievements = views
	return out, nil
}

func (s *Server) handleListBadges(ctx context.Context, _ *struct{}) (*ListBadgesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.services.Achievements.Badges(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ListBadgesOutput{}
	out.Body.Badges = views
	return out, nil
}
