package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reconcileUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/users/{userID}/reconcile",
		Summary:     "Reconcile a user's balances",
		Description: "Recomputes the balance mirrors from the points ledger. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReconcileUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adjustPoints",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/points/adjust",
		Summary:     "Adjust a user's points",
		Description: "Appends a signed manual adjustment to a user's points ledger. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdjustPoints)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMissionTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/mission-templates",
		Summary:     "List mission templates",
		Description: "Returns every mission template. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTemplates)

	huma.Register(s.api, huma.Operation{
		OperationID: "createMissionTemplate",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/mission-templates",
		Summary:     "Create mission template",
		Description: "Creates a reusable mission template. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMissionTemplate",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/mission-templates/{templateID}",
		Summary:     "Update mission template",
		Description: "Replaces a mission template's definition. Already-generated missions keep their stamped values. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMissionTemplate",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/mission-templates/{templateID}",
		Summary:     "Delete mission template",
		Description: "Removes a mission template from future generation. Requires admin role.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTemplate)
}

// === DTOs ===

// ReconcileInput identifies the user to reconcile.
type ReconcileInput struct {
	UserID string `path:"userID" doc:"User ID"`
}

// ProgressOutput wraps a user progress snapshot for Huma.
type ProgressOutput struct {
	Body *domain.UserProgress
}

// AdjustPointsRequest is the request body for a manual adjustment.
type AdjustPointsRequest struct {
	UserID      string `json:"user_id" validate:"required" doc:"User to adjust"`
	Points      int    `json:"points" doc:"Signed XP delta"`
	Coins       int    `json:"coins" doc:"Signed coin delta"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Reason for the adjustment"`
}

// AdjustPointsInput wraps the adjustment request for Huma.
type AdjustPointsInput struct {
	Body AdjustPointsRequest
}

// AdjustPointsResponse reports the ledger entry and resulting balances.
type AdjustPointsResponse struct {
	Entry    *domain.PointsLedgerEntry `json:"entry" doc:"Appended ledger entry"`
	Progress *domain.UserProgress      `json:"progress" doc:"Balances after the adjustment"`
}

// AdjustPointsOutput wraps the adjustment response for Huma.
type AdjustPointsOutput struct {
	Body AdjustPointsResponse
}

// TemplateRequest is the request body for creating or updating a template.
type TemplateRequest struct {
	Type        string `json:"type" validate:"required,oneof=complete_lessons complete_quizzes earn_xp perfect_score daily_login recycle_items eco_action" doc:"Mission goal type"`
	Cadence     string `json:"cadence" validate:"required,oneof=daily weekly" doc:"Generation cadence"`
	Difficulty  string `json:"difficulty" validate:"required,oneof=easy medium hard" doc:"Difficulty tier"`
	Title       string `json:"title" validate:"required,max=200" doc:"Display title"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000" doc:"Display description"`
	TargetValue int    `json:"target_value" validate:"required,min=1" doc:"Progress needed to complete"`
	RewardXP    int    `json:"reward_xp" validate:"min=0" doc:"XP paid on completion"`
	RewardCoins int    `json:"reward_coins" validate:"min=0" doc:"Coins paid on completion"`
	MinLevel    int    `json:"min_level,omitempty" validate:"omitempty,min=1" doc:"Minimum user level"`
	Active      bool   `json:"active" doc:"Whether the template participates in generation"`
}

// CreateTemplateInput wraps the create request for Huma.
type CreateTemplateInput struct {
	Body TemplateRequest
}

// UpdateTemplateInput wraps the update request for Huma.
type UpdateTemplateInput struct {
	TemplateID string `path:"templateID" doc:"Template ID"`
	Body       TemplateRequest
}

// DeleteTemplateInput identifies the template to delete.
type DeleteTemplateInput struct {
	TemplateID string `path:"templateID" doc:"Template ID"`
}

// TemplateOutput wraps a single template for Huma.
type TemplateOutput struct {
	Body *domain.MissionTemplate
}

// ListTemplatesOutput wraps the template list for Huma.
type ListTemplatesOutput struct {
	Body struct {
		Templates []*domain.MissionTemplate `json:"templates" doc:"Every mission template"`
	}
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleReconcileUser(ctx context.Context, input *ReconcileInput) (*ProgressOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	progress, err := s.services.Points.Reconcile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	return &ProgressOutput{Body: progress}, nil
}

func (s *Server) handleAdjustPoints(ctx context.Context, input *AdjustPointsInput) (*AdjustPointsOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	desc := input.Body.Description
	if desc == "" {
		desc = "manual adjustment"
	}

	result, err := s.services.Points.Award(ctx, service.AwardRequest{
		UserID:      input.Body.UserID,
		Points:      input.Body.Points,
		Coins:       input.Body.Coins,
		Source:      domain.PointsSourceAdjustment,
		SourceID:    adminID,
		Description: desc,
	})
	if err != nil {
		return nil, err
	}

	return &AdjustPointsOutput{
		Body: AdjustPointsResponse{
			Entry:    result.Entry,
			Progress: result.Progress,
		},
	}, nil
}

func (s *Server) handleListTemplates(ctx context.Context, _ *struct{}) (*ListTemplatesOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	out := &ListTemplatesOutput{}
	for tpl, err := range s.store.Templates.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		out.Body.Templates = append(out.Body.Templates, tpl)
	}
	return out, nil
}

func (s *Server) handleCreateTemplate(ctx context.Context, input *CreateTemplateInput) (*TemplateOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	templateID, err := id.Generate("mtpl")
	if err != nil {
		return nil, fmt.Errorf("generate template ID: %w", err)
	}

	tpl := templateFromRequest(templateID, input.Body)
	tpl.InitTimestamps()

	if err := s.store.Templates.Create(ctx, templateID, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	return &TemplateOutput{Body: tpl}, nil
}

func (s *Server) handleUpdateTemplate(ctx context.Context, input *UpdateTemplateInput) (*TemplateOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	existing, err := s.store.Templates.Get(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	tpl := templateFromRequest(input.TemplateID, input.Body)
	tpl.CreatedAt = existing.CreatedAt
	tpl.Touch()

	if err := s.store.Templates.Update(ctx, input.TemplateID, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	return &TemplateOutput{Body: tpl}, nil
}

func (s *Server) handleDeleteTemplate(ctx context.Context, input *DeleteTemplateInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.store.Templates.Delete(ctx, input.TemplateID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Template deleted"}}, nil
}

// === Helpers ===

func templateFromRequest(templateID string, req TemplateRequest) *domain.MissionTemplate {
	return &domain.MissionTemplate{
		Base:        domain.Base{ID: templateID},
		Type:        domain.MissionType(req.Type),
		Cadence:     domain.MissionCadence(req.Cadence),
		Difficulty:  domain.MissionDifficulty(req.Difficulty),
		Title:       req.Title,
		Description: req.Description,
		TargetValue: req.TargetValue,
		RewardXP:    req.RewardXP,
		RewardCoins: req.RewardCoins,
		MinLevel:    req.MinLevel,
		Active:      req.Active,
	}
}
