package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reportActivity",
		Method:      http.MethodPost,
		Path:        "/api/v1/activities",
		Summary:     "Report an activity",
		Description: "Processes one activity event through the progression engine: streak, points, missions, leaderboard and achievements",
		Tags:        []string{"Activities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReportActivity)
}

// === DTOs ===

// ActivityRequest is the request body for reporting an activity.
type ActivityRequest struct {
	Type        string    `json:"type" validate:"required,oneof=lesson_completed quiz_completed login recycle_logged eco_action" doc:"Activity type"`
	SubjectID   string    `json:"subject_id,omitempty" validate:"omitempty,max=100" doc:"Lesson or quiz ID"`
	Score       int       `json:"score,omitempty" validate:"omitempty,min=0" doc:"Quiz score"`
	MaxScore    int       `json:"max_score,omitempty" validate:"omitempty,min=0" doc:"Quiz maximum score"`
	Attempt     int       `json:"attempt,omitempty" validate:"omitempty,min=1" doc:"Quiz attempt number, 1 for the first try"`
	DurationSec int       `json:"duration_sec,omitempty" validate:"omitempty,min=0" doc:"Seconds spent on the quiz"`
	Quantity    int       `json:"quantity,omitempty" validate:"omitempty,min=0" doc:"Item count for recycle_logged"`
	OccurredAt  time.Time `json:"occurred_at,omitzero" doc:"When the activity happened (defaults to now)"`
}

// ActivityInput wraps the activity request for Huma.
type ActivityInput struct {
	Body ActivityRequest
}

// ActivityOutput wraps the progression result for Huma.
type ActivityOutput struct {
	Body *service.ProgressionResult
}

// === Handlers ===

func (s *Server) handleReportActivity(ctx context.Context, input *ActivityInput) (*ActivityOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Progression.ReportActivity(ctx, userID, domain.ActivityEvent{
		Type:        domain.ActivityType(input.Body.Type),
		SubjectID:   input.Body.SubjectID,
		Score:       input.Body.Score,
		MaxScore:    input.Body.MaxScore,
		Attempt:     input.Body.Attempt,
		DurationSec: input.Body.DurationSec,
		Quantity:    input.Body.Quantity,
		OccurredAt:  input.Body.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	return &ActivityOutput{Body: result}, nil
}
