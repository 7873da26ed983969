package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboards/{window}",
		Summary:     "Get leaderboard",
		Description: "Returns the top entries for a window, optionally scoped to a grade or college cohort. Every entry gets a distinct rank; tied scores order by user ID.",
		Tags:        []string{"Leaderboards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStanding",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboards/{window}/standing",
		Summary:     "Get own standing",
		Description: "Returns the caller's rank, score and percentile within a window",
		Tags:        []string{"Leaderboards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStanding)
}

// === DTOs ===

// LeaderboardInput holds the window, scope and page size for a ranking read.
type LeaderboardInput struct {
	Window     string `path:"window" enum:"weekly,monthly,all_time" doc:"Scoring window"`
	Scope      string `query:"scope" default:"global" enum:"global,grade,college" doc:"Cohort filter"`
	ScopeValue string `query:"scope_value" doc:"Grade or college to filter by, required for non-global scopes"`
	Limit      int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Number of entries"`
}

// LeaderboardOutput wraps the ranking page for Huma.
type LeaderboardOutput struct {
	Body struct {
		Window  string                     `json:"window" doc:"Scoring window"`
		Entries []*domain.LeaderboardEntry `json:"entries" doc:"Ranked entries, best first"`
	}
}

// StandingInput holds the window and scope for an own-standing read.
type StandingInput struct {
	Window string `path:"window" enum:"weekly,monthly,all_time" doc:"Scoring window"`
	Scope  string `query:"scope" default:"global" enum:"global,grade,college" doc:"Cohort filter; grade and college come from the caller's account"`
}

// StandingOutput wraps the standing for Huma.
type StandingOutput struct {
	Body *domain.Standing
}

// === Handlers ===

func (s *Server) handleGetLeaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	entries, err := s.services.Leaderboard.Top(ctx,
		domain.LeaderboardWindow(input.Window),
		domain.LeaderboardScope(input.Scope),
		input.ScopeValue,
		input.Limit,
		time.Now())
	if err != nil {
		return nil, err
	}

	out := &LeaderboardOutput{}
	out.Body.Window = input.Window
	out.Body.Entries = entries
	return out, nil
}

func (s *Server) handleGetStanding(ctx context.Context, input *StandingInput) (*StandingOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	standing, err := s.services.Leaderboard.Standing(ctx, user,
		domain.LeaderboardWindow(input.Window),
		domain.LeaderboardScope(input.Scope),
		time.Now())
	if err != nil {
		return nil, err
	}

	return &StandingOutput{Body: standing}, nil
}
