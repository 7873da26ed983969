package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerUser(t, "student@example.com")

	resp := ts.api.Get("/api/v1/admin/mission-templates", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/admin/users/"+userID+"/reconcile", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestTemplateCRUD(t *testing.T) {
	ts := setupTestServer(t)
	token, adminID := ts.registerUser(t, "admin@example.com")
	ts.setRole(t, adminID, domain.RoleAdmin)

	// Create.
	resp := ts.api.Post("/api/v1/admin/mission-templates",
		"Authorization: Bearer "+token,
		map[string]any{
			"type":         "complete_lessons",
			"cadence":      "daily",
			"difficulty":   "easy",
			"title":        "Finish two lessons",
			"target_value": 2,
			"reward_xp":    10,
			"reward_coins": 2,
			"active":       true,
		})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created testEnvelope[domain.MissionTemplate]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)
	assert.Equal(t, "Finish two lessons", created.Data.Title)

	// List.
	resp = ts.api.Get("/api/v1/admin/mission-templates", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var listed testEnvelope[struct {
		Templates []*domain.MissionTemplate `json:"templates"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	require.Len(t, listed.Data.Templates, 1)

	// Update.
	resp = ts.api.Put("/api/v1/admin/mission-templates/"+created.Data.ID,
		"Authorization: Bearer "+token,
		map[string]any{
			"type":         "complete_lessons",
			"cadence":      "daily",
			"difficulty":   "easy",
			"title":        "Finish three lessons",
			"target_value": 3,
			"reward_xp":    15,
			"reward_coins": 3,
			"active":       true,
		})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated testEnvelope[domain.MissionTemplate]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, 3, updated.Data.TargetValue)
	assert.Equal(t, "Finish three lessons", updated.Data.Title)

	// Delete.
	resp = ts.api.Delete("/api/v1/admin/mission-templates/"+created.Data.ID,
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/admin/mission-templates", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	assert.Empty(t, listed.Data.Templates)
}

func TestAdjustPoints(t *testing.T) {
	ts := setupTestServer(t)
	adminToken, adminID := ts.registerUser(t, "admin@example.com")
	ts.setRole(t, adminID, domain.RoleAdmin)
	userToken, userID := ts.registerUser(t, "student@example.com")

	resp := ts.api.Post("/api/v1/admin/points/adjust",
		"Authorization: Bearer "+adminToken,
		map[string]any{
			"user_id":     userID,
			"points":      120,
			"coins":       30,
			"description": "contest prize",
		})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[AdjustPointsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 120, envelope.Data.Progress.TotalXP)

	// The adjustment shows up in the user's ledger.
	resp = ts.api.Get("/api/v1/users/me/ledger", "Authorization: Bearer "+userToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var ledger testEnvelope[LedgerHistoryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ledger))
	require.Len(t, ledger.Data.Entries, 1)
	assert.Equal(t, 120, ledger.Data.Entries[0].Points)
	assert.Equal(t, "contest prize", ledger.Data.Entries[0].Description)
}

func TestReconcileUser(t *testing.T) {
	ts := setupTestServer(t)
	adminToken, adminID := ts.registerUser(t, "admin@example.com")
	ts.setRole(t, adminID, domain.RoleAdmin)
	userToken, userID := ts.registerUser(t, "student@example.com")

	resp := ts.api.Post("/api/v1/activities",
		"Authorization: Bearer "+userToken,
		map[string]any{"type": "eco_action"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/admin/users/"+userID+"/reconcile",
		"Authorization: Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.UserProgress]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.TotalXP)
}
