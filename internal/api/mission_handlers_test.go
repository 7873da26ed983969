package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

// listMissions fetches the user's missions through the API.
func (ts *testServer) listMissions(t *testing.T, token string) []*domain.Mission {
	t.Helper()

	resp := ts.api.Get("/api/v1/missions", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[struct {
		Missions []*domain.Mission `json:"missions"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.Missions
}

func TestListMissions_GeneratesFromTemplates(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionCompleteLessons, domain.CadenceDaily, 2, 10, 2)
	token, _ := ts.registerUser(t, "eco@example.com")

	missions := ts.listMissions(t, token)
	require.Len(t, missions, 1)
	assert.Equal(t, domain.MissionCompleteLessons, missions[0].Type)
	assert.Equal(t, domain.MissionActive, missions[0].Status)
	assert.Equal(t, 0, missions[0].Progress)

	// A second list returns the same generated missions.
	again := ts.listMissions(t, token)
	require.Len(t, again, 1)
	assert.Equal(t, missions[0].ID, again[0].ID)
}

func TestActivityAdvancesMission(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionCompleteLessons, domain.CadenceDaily, 2, 10, 2)
	token, _ := ts.registerUser(t, "eco@example.com")

	resp := ts.api.Post("/api/v1/activities",
		"Authorization: Bearer "+token,
		map[string]any{"type": "lesson_completed"})
	require.Equal(t, http.StatusOK, resp.Code)

	missions := ts.listMissions(t, token)
	require.Len(t, missions, 1)
	assert.Equal(t, 1, missions[0].Progress)
	assert.Equal(t, domain.MissionActive, missions[0].Status)
}

func TestRecordProgress_CompletesMission(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionRecycleItems, domain.CadenceDaily, 3, 10, 2)
	token, _ := ts.registerUser(t, "eco@example.com")

	missions := ts.listMissions(t, token)
	require.Len(t, missions, 1)
	missionID := missions[0].ID

	resp := ts.api.Post("/api/v1/missions/"+missionID+"/progress",
		"Authorization: Bearer "+token,
		map[string]any{"delta": 3})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Mission]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, domain.MissionCompleted, envelope.Data.Status)
	assert.Equal(t, 3, envelope.Data.Progress)

	// Completed missions accept no further progress.
	resp = ts.api.Post("/api/v1/missions/"+missionID+"/progress",
		"Authorization: Bearer "+token,
		map[string]any{"delta": 1})
	assert.Equal(t, http.StatusGone, resp.Code)
}

func TestRecordProgress_UnknownMission(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerUser(t, "eco@example.com")

	resp := ts.api.Post("/api/v1/missions/msn-nope/progress",
		"Authorization: Bearer "+token,
		map[string]any{"delta": 1})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSubmitProof_StrongProofCompletes(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionEcoAction, domain.CadenceDaily, 1, 15, 3)
	token, _ := ts.registerUser(t, "eco@example.com")

	missions := ts.listMissions(t, token)
	require.Len(t, missions, 1)

	resp := ts.api.Post("/api/v1/missions/"+missions[0].ID+"/proof",
		"Authorization: Bearer "+token,
		map[string]any{"proof_ref": "asset:planted a tree in the school garden"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[ProofResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "approved", envelope.Data.Verdict)
	assert.Equal(t, domain.MissionCompleted, envelope.Data.Mission.Status)
}

func TestSubmitProof_BorderlineQueuesForReview(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionEcoAction, domain.CadenceDaily, 1, 15, 3)
	token, _ := ts.registerUser(t, "eco@example.com")

	missions := ts.listMissions(t, token)
	require.Len(t, missions, 1)

	resp := ts.api.Post("/api/v1/missions/"+missions[0].ID+"/proof",
		"Authorization: Bearer "+token,
		map[string]any{"proof_ref": "https://x.co/1"})
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ProofResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "needs_review", envelope.Data.Verdict)
	assert.Equal(t, domain.MissionNeedsReview, envelope.Data.Mission.Status)
}

func TestReviewMission_Permissions(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedTemplate(t, domain.MissionEcoAction, domain.CadenceDaily, 1, 15, 3)
	studentToken, studentID := ts.registerUser(t, "student@example.com")
	teacherToken, teacherID := ts.registerUser(t, "teacher@example.com")
	ts.setRole(t, teacherID, domain.RoleTeacher)

	missions := ts.listMissions(t, studentToken)
	require.Len(t, missions, 1)
	missionID := missions[0].ID

	resp := ts.api.Post("/api/v1/missions/"+missionID+"/proof",
		"Authorization: Bearer "+studentToken,
		map[string]any{"proof_ref": "https://x.co/1"})
	require.Equal(t, http.StatusOK, resp.Code)

	reviewPath := "/api/v1/users/" + studentID + "/missions/" + missionID + "/review"

	// Students cannot review.
	resp = ts.api.Post(reviewPath,
		"Authorization: Bearer "+studentToken,
		map[string]any{"approve": true})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Teachers can.
	resp = ts.api.Post(reviewPath,
		"Authorization: Bearer "+teacherToken,
		map[string]any{"approve": true})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Mission]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, domain.MissionCompleted, envelope.Data.Status)
	assert.Equal(t, teacherID, envelope.Data.ReviewedBy)
}
