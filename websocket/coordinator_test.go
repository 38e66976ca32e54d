// websocket/coordinator_test.go

//go:build unit
// +build unit

package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleJoin_FirstParticipantWaits(t *testing.T) {
	co, sender := newTestCoordinator()

	co.HandleJoin("m1", "u1", "Alice", "")

	msgs := sender.to("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeWaitingForPlayers, msgs[0].Type)
	assert.Equal(t, "m1", msgs[0].MatchID)
	assert.Empty(t, sender.ofType(TypePlayerJoined), "nobody else to notify")
}

// The 2nd join triggers exactly one MATCH_READY to each participant and a
// PLAYER_JOINED to the pre-existing participant only.
func TestHandleJoin_SecondParticipantMakesMatchReady(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	sender.reset()

	co.HandleJoin("m1", "u2", "Bob", "")

	ready := sender.ofType(TypeMatchReady)
	require.Len(t, ready, 2)
	recipients := []string{ready[0].userID, ready[1].userID}
	assert.ElementsMatch(t, []string{"u1", "u2"}, recipients)

	joined := sender.ofType(TypePlayerJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "u1", joined[0].userID, "joiner is excluded from PLAYER_JOINED")
	data := joined[0].env.Data.(PlayerJoinedData)
	assert.Equal(t, "u2", data.PlayerID)
	assert.Equal(t, 2, data.TotalPlayers)
}

func TestHandleLeave_SoleParticipantDeletesRecordSilently(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	sender.reset()

	co.HandleLeave("m1", "u1")

	assert.False(t, co.Presence().Has("m1"), "presence record deleted")
	assert.Empty(t, sender.sent, "no broadcast when nobody remains")
}

func TestHandleLeave_RemainingParticipantGetsLeftThenWaiting(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	co.HandleJoin("m1", "u2", "Bob", "")
	sender.reset()

	co.HandleLeave("m1", "u2")

	msgs := sender.to("u1")
	require.Len(t, msgs, 2)
	assert.Equal(t, TypePlayerLeft, msgs[0].Type)
	left := msgs[0].Data.(PlayerLeftData)
	assert.Equal(t, "u2", left.PlayerID)
	assert.Equal(t, "Bob", left.Username)
	assert.Equal(t, 1, left.RemainingPlayers)
	assert.Equal(t, TypeWaitingForPlayers, msgs[1].Type)

	assert.Empty(t, sender.to("u2"), "the leaver hears nothing")
}

func TestHandleCodeShared_SoloStoresCodeAndErrorsBack(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	sender.reset()

	co.HandleCodeShared("m1", "u1", "Alice", "XYZ789")

	msgs := sender.to("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeError, msgs[0].Type)
	assert.Equal(t, ErrCodeInsufficientPlayers, msgs[0].Data.(ErrorData).Code)
	assert.Empty(t, sender.ofType(TypeCodeShared))

	// the code is stored, not rejected, and relayed once the opponent joins
	assert.Equal(t, "XYZ789", co.Presence().JoinCode("m1"))
	sender.reset()
	co.HandleJoin("m1", "u2", "Bob", "")
	ready := sender.ofType(TypeMatchReady)
	require.NotEmpty(t, ready)
	assert.Equal(t, "XYZ789", ready[0].env.Data.(MatchReadyData).JoiningCode)
}

func TestHandleCodeShared_BroadcastsWhenMatchIsFull(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	co.HandleJoin("m1", "u2", "Bob", "")
	sender.reset()

	co.HandleCodeShared("m1", "u1", "Alice", "XYZ789")

	shared := sender.ofType(TypeCodeShared)
	require.Len(t, shared, 2, "creator included in CODE_SHARED broadcast")
	data := shared[0].env.Data.(CodeSharedData)
	assert.Equal(t, "XYZ789", data.JoiningCode)
	assert.Empty(t, sender.ofType(TypeError))
}

func TestHandleDisconnect_AppliesToEveryMatch(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	co.HandleJoin("m1", "u2", "Bob", "")
	co.HandleJoin("m2", "u1", "Alice", "")
	sender.reset()

	co.HandleDisconnect("u1")

	assert.True(t, co.Presence().Has("m1"), "Bob is still in m1")
	assert.False(t, co.Presence().Has("m2"), "m2 emptied and deleted")
	left := sender.ofType(TypePlayerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "u2", left[0].userID)
}

func TestHandleEvent_MalformedPayloadErrorsSenderOnly(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	co.HandleJoin("m1", "u2", "Bob", "")
	sender.reset()

	co.HandleEvent("u1", []byte(`{not json`))

	msgs := sender.to("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeError, msgs[0].Type)
	assert.Equal(t, ErrCodeInvalidFormat, msgs[0].Data.(ErrorData).Code)
	assert.Empty(t, sender.to("u2"), "other participants are untouched")
	assert.Equal(t, 2, co.Presence().Size("m1"), "presence state is untouched")
}

func TestHandleEvent_UnknownTypeIsIgnored(t *testing.T) {
	co, sender := newTestCoordinator()

	co.HandleEvent("u1", []byte(`{"type":"SPECTATE","data":{},"matchId":"m1"}`))

	assert.Empty(t, sender.sent, "unknown kinds are logged, not answered")
}

func TestHandleEvent_DispatchesJoin(t *testing.T) {
	co, sender := newTestCoordinator()

	raw, _ := json.Marshal(ClientEvent{
		Type:    TypePlayerJoined,
		Data:    json.RawMessage(`{"username":"Alice"}`),
		MatchID: "m1",
	})
	co.HandleEvent("u1", raw)

	assert.Equal(t, 1, co.Presence().Size("m1"))
	msgs := sender.to("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeWaitingForPlayers, msgs[0].Type)
}

func TestNotifyMatchCompleted_ReachesAllPresent(t *testing.T) {
	co, sender := newTestCoordinator()
	co.HandleJoin("m1", "u1", "Alice", "")
	co.HandleJoin("m1", "u2", "Bob", "")
	sender.reset()

	co.NotifyMatchCompleted("m1", MatchCompletedData{
		IsTie:          false,
		WinnerID:       "u1",
		WinnerUsername: "Alice",
		PassedTests:    5,
		TotalTests:     5,
	})

	done := sender.ofType(TypeMatchCompleted)
	require.Len(t, done, 2)
	data := done[0].env.Data.(MatchCompletedData)
	assert.Equal(t, "m1", data.MatchID)
	assert.Equal(t, "u1", data.WinnerID)
}
