//go:build unit

// file: controllers/match_controller_test.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeclash/models"
	"codeclash/services"
)

func matchRouter(mc *MatchController, userID string) *gin.Engine {
	router := setupTestRouter()
	router.POST("/match-with-your-buddy", asUser(userID, userID), mc.HandleMatchmaking)
	router.GET("/match-with-your-buddy/qr", asUser(userID, userID), mc.ShowJoinCodeQR)
	return router
}

func postAction(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleMatchmaking_Create(t *testing.T) {
	store := &fakePairingStore{}
	mc := NewMatchController(services.NewJoinCodeBroker(), store)
	router := matchRouter(mc, "creator")

	w := postAction(router, "/match-with-your-buddy?action=create",
		matchRequest{Difficulty: []string{"EASY"}, Topic: []string{"ARRAY"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["joiningCode"], 6)
	assert.NotEmpty(t, body["matchId"])
	require.Len(t, store.users, 1)
	assert.Equal(t, "creator", store.users[0].ID)
}

func TestHandleMatchmaking_JoinPairsAndPersists(t *testing.T) {
	broker := services.NewJoinCodeBroker()
	store := &fakePairingStore{question: &models.Question{ID: "q-1"}}
	mc := NewMatchController(broker, store)

	entry := broker.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	router := matchRouter(mc, "joiner")
	w := postAction(router, "/match-with-your-buddy?action=join&code="+entry.Code,
		matchRequest{Difficulty: []string{"EASY"}, Topic: []string{"ARRAY"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, entry.MatchID, body["matchId"])
	assert.Equal(t, "team-1", body["teamId"])
	assert.Equal(t, "q-1", body["questionId"])

	require.NotNil(t, store.createdTeam)
	assert.Equal(t, "creator", store.createdTeam.PlayerOneID)
	assert.Equal(t, "joiner", store.createdTeam.PlayerTwoID)
	assert.Equal(t, "team-1", store.createdMatch.TeamID)
	assert.Equal(t, models.MatchStatusActive, store.createdMatch.Status)
}

func TestHandleMatchmaking_JoinConstraintMismatch(t *testing.T) {
	broker := services.NewJoinCodeBroker()
	mc := NewMatchController(broker, &fakePairingStore{})
	entry := broker.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	router := matchRouter(mc, "joiner")
	w := postAction(router, "/match-with-your-buddy?action=join&code="+entry.Code,
		matchRequest{Difficulty: []string{"HARD"}, Topic: []string{"ARRAY"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "same difficulty and topic")
}

func TestHandleMatchmaking_JoinUnknownCode(t *testing.T) {
	mc := NewMatchController(services.NewJoinCodeBroker(), &fakePairingStore{})
	router := matchRouter(mc, "joiner")

	w := postAction(router, "/match-with-your-buddy?action=join&code=NOPE42",
		matchRequest{Difficulty: []string{"EASY"}, Topic: []string{"ARRAY"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleMatchmaking_JoinWithoutQuestionRollsBack(t *testing.T) {
	broker := services.NewJoinCodeBroker()
	mc := NewMatchController(broker, &fakePairingStore{question: nil})
	entry := broker.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	router := matchRouter(mc, "joiner")
	w := postAction(router, "/match-with-your-buddy?action=join&code="+entry.Code,
		matchRequest{Difficulty: []string{"EASY"}, Topic: []string{"ARRAY"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "No questions available")

	// the released code is joinable again once questions exist
	_, err := broker.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	assert.NoError(t, err)
}

func TestHandleMatchmaking_CheckIsCreatorOnly(t *testing.T) {
	broker := services.NewJoinCodeBroker()
	mc := NewMatchController(broker, &fakePairingStore{})
	entry := broker.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	creatorRouter := matchRouter(mc, "creator")
	w := postAction(creatorRouter, "/match-with-your-buddy?action=check&code="+entry.Code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "waiting", body["status"])
	assert.NotEmpty(t, body["expiresAt"])

	strangerRouter := matchRouter(mc, "stranger")
	w = postAction(strangerRouter, "/match-with-your-buddy?action=check&code="+entry.Code, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleMatchmaking_CheckReportsMatched(t *testing.T) {
	broker := services.NewJoinCodeBroker()
	mc := NewMatchController(broker, &fakePairingStore{})
	entry := broker.Create("creator", []string{"EASY"}, []string{"ARRAY"})
	_, err := broker.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	require.NoError(t, err)

	router := matchRouter(mc, "creator")
	w := postAction(router, "/match-with-your-buddy?action=check&code="+entry.Code, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "matched", body["status"])
	assert.Equal(t, entry.MatchID, body["matchId"])
}

func TestHandleMatchmaking_UnknownAction(t *testing.T) {
	mc := NewMatchController(services.NewJoinCodeBroker(), &fakePairingStore{})
	router := matchRouter(mc, "creator")

	w := postAction(router, "/match-with-your-buddy?action=destroy", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShowJoinCodeQR(t *testing.T) {
	mc := NewMatchController(services.NewJoinCodeBroker(), &fakePairingStore{})
	router := matchRouter(mc, "creator")

	req, _ := http.NewRequest("GET", "/match-with-your-buddy/qr?code=ABC123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}
