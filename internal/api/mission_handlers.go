package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

func (s *Server) registerMissionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMissions",
		Method:      http.MethodGet,
		Path:        "/api/v1/missions",
		Summary:     "List missions",
		Description: "Returns the user's missions for the current daily and weekly periods, generating them if needed",
		Tags:        []string{"Missions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMissions)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordMissionProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/missions/{missionID}/progress",
		Summary:     "Record mission progress",
		Description: "Advances one mission by a positive delta; completion pays the reward",
		Tags:        []string{"Missions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitMissionProof",
		Method:      http.MethodPost,
		Path:        "/api/v1/missions/{missionID}/proof",
		Summary:     "Submit mission proof",
		Description: "Submits a proof reference for scoring; strong proofs complete the mission, weak ones are rejected, borderline ones queue for manual review",
		Tags:        []string{"Missions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitProof)

	huma.Register(s.api, huma.Operation{
		OperationID: "reviewMission",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/missions/{missionID}/review",
		Summary:     "Review a mission proof",
		Description: "Approves or rejects a mission awaiting manual review. Requires teacher or admin role.",
		Tags:        []string{"Missions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReviewMission)
}

// === DTOs ===

// ListMissionsOutput wraps the mission list for Huma.
type ListMissionsOutput struct {
	Body struct {
		Missions []*domain.Mission `json:"missions" doc:"Active and completed missions for the current periods"`
	}
}

// ProgressRequest is the request body for recording mission progress.
type ProgressRequest struct {
	Delta int `json:"delta" validate:"required,min=1" doc:"Progress units to add"`
}

// ProgressInput wraps the progress request for Huma.
type ProgressInput struct {
	MissionID string `path:"missionID" doc:"Mission ID"`
	Body      ProgressRequest
}

// MissionOutput wraps a single mission for Huma.
type MissionOutput struct {
	Body *domain.Mission
}

// ProofRequest is the request body for submitting mission proof.
type ProofRequest struct {
	ProofRef string `json:"proof_ref" validate:"required,max=2000" doc:"Proof reference: an asset handle, URL or description"`
}

// ProofInput wraps the proof request for Huma.
type ProofInput struct {
	MissionID string `path:"missionID" doc:"Mission ID"`
	Body      ProofRequest
}

// ProofResponse reports the scoring verdict and the mission state.
type ProofResponse struct {
	Verdict string          `json:"verdict" doc:"Scoring verdict: approved, needs_review or rejected"`
	Mission *domain.Mission `json:"mission" doc:"Mission after scoring"`
}

// ProofOutput wraps the proof response for Huma.
type ProofOutput struct {
	Body ProofResponse
}

// ReviewRequest is the request body for a manual review decision.
type ReviewRequest struct {
	Approve bool `json:"approve" doc:"True to approve and complete, false to reject"`
}

// ReviewInput wraps the review request for Huma.
type ReviewInput struct {
	UserID    string `path:"userID" doc:"Owner of the mission"`
	MissionID string `path:"missionID" doc:"Mission ID"`
	Body      ReviewRequest
}

// === Handlers ===

func (s *Server) handleListMissions(ctx context.Context, _ *struct{}) (*ListMissionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	missions, err := s.services.Missions.List(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	out := &ListMissionsOutput{}
	out.Body.Missions = missions
	return out, nil
}

func (s *Server) handleRecordProgress(ctx context.Context, input *ProgressInput) (*MissionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	mission, err := s.services.Missions.RecordProgress(ctx, userID, input.MissionID, input.Body.Delta, time.Now())
	if err != nil {
		return nil, err
	}

	return &MissionOutput{Body: mission}, nil
}

func (s *Server) handleSubmitProof(ctx context.Context, input *ProofInput) (*ProofOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	verdict, mission, err := s.services.Missions.SubmitProof(ctx, userID, input.MissionID, input.Body.ProofRef, time.Now())
	if err != nil {
		return nil, err
	}

	return &ProofOutput{
		Body: ProofResponse{
			Verdict: string(verdict),
			Mission: mission,
		},
	}, nil
}

func (s *Server) handleReviewMission(ctx context.Context, input *ReviewInput) (*MissionOutput, error) {
	reviewer, err := s.RequireReviewer(ctx)
	if err != nil {
		return nil, err
	}

	mission, err := s.services.Missions.ManualVerify(ctx, reviewer, input.UserID, input.MissionID, input.Body.Approve, time.Now())
	if err != nil {
		return nil, err
	}

	return &MissionOutput{Body: mission}, nil
}
