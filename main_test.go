//go:build unit

// main_test.go
package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeclash/controllers"
	"codeclash/services"
	"codeclash/websocket"
)

// TestHealthEndpoint verifies the health route answers as wired in main.
func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", controllers.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
}

// recordingSender captures the payload the notifier hands over.
type recordingSender struct {
	envelopes []websocket.Envelope
}

func (r *recordingSender) Send(_ string, env websocket.Envelope) {
	r.envelopes = append(r.envelopes, env)
}

// TestCompletionNotifier_MapsOutcomeOntoBroadcast checks the adapter between
// the outcome evaluator and the channel coordinator.
func TestCompletionNotifier_MapsOutcomeOntoBroadcast(t *testing.T) {
	sender := &recordingSender{}
	presence := websocket.NewPresenceTable()
	coordinator := websocket.NewCoordinator(sender, presence)
	presence.Join("match-1", "alice", "alice")
	presence.Join("match-1", "bob", "bob")

	notifier := &completionNotifier{coordinator: coordinator}
	winner := services.ParticipantResult{
		UserID: "alice", Username: "alice", Score: 91.5, Rank: 1,
		Metrics: services.ParticipantMetrics{PassedTests: 5, TotalTests: 5, ExecutionTime: 0.4},
	}
	loser := services.ParticipantResult{UserID: "bob", Username: "bob", Score: 70.1, Rank: 2}
	notifier.MatchCompleted("match-1", &services.MatchOutcome{
		MatchID:         "match-1",
		Winner:          &winner,
		Loser:           &loser,
		AllParticipants: []services.ParticipantResult{winner, loser},
	})

	require.Len(t, sender.envelopes, 2, "both participants receive the broadcast")
	data, ok := sender.envelopes[0].Data.(websocket.MatchCompletedData)
	require.True(t, ok)
	assert.Equal(t, "alice", data.WinnerID)
	assert.Equal(t, 5, data.PassedTests)
	require.Len(t, data.Participants, 2)
	assert.Equal(t, 1, data.Participants[0].Rank)
}

// TestCompletionNotifier_Tie keeps the winner fields empty for a tie.
func TestCompletionNotifier_Tie(t *testing.T) {
	sender := &recordingSender{}
	presence := websocket.NewPresenceTable()
	coordinator := websocket.NewCoordinator(sender, presence)
	presence.Join("match-1", "alice", "alice")

	notifier := &completionNotifier{coordinator: coordinator}
	winner := services.ParticipantResult{UserID: "alice", Score: 80, Rank: 1}
	notifier.MatchCompleted("match-1", &services.MatchOutcome{
		MatchID:         "match-1",
		IsTie:           true,
		Winner:          &winner,
		AllParticipants: []services.ParticipantResult{winner},
	})

	require.Len(t, sender.envelopes, 1)
	data, ok := sender.envelopes[0].Data.(websocket.MatchCompletedData)
	require.True(t, ok)
	assert.True(t, data.IsTie)
	assert.Empty(t, data.WinnerID)
}
