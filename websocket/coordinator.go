// file: websocket/coordinator.go
package websocket

import (
	"encoding/json"
	"sync"

	"codeclash/logger"
)

// Coordinator is the presence state machine. Every inbound presence event and
// every outbound broadcast for a match flows through here; nothing else
// mutates the presence table. A single mutex serializes event handling so
// broadcasts within one match go out in the order the events were processed.
type Coordinator struct {
	mu       sync.Mutex
	sender   Sender
	presence *PresenceTable
}

// NewCoordinator wires a coordinator to its connection sender and presence
// table. One instance per process, constructed in main.
func NewCoordinator(sender Sender, presence *PresenceTable) *Coordinator {
	return &Coordinator{sender: sender, presence: presence}
}

// Presence exposes the table for read-only inspection (handlers, tests).
func (co *Coordinator) Presence() *PresenceTable {
	return co.presence
}

// HandleEvent parses one raw client frame and dispatches it. A frame that
// fails to parse yields an INVALID_FORMAT error back to the sender only and
// never disturbs other participants.
func (co *Coordinator) HandleEvent(userID string, raw []byte) {
	var ev ClientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logger.Warn.Printf("[coordinator] unparsable frame from %s: %v", userID, err)
		co.sendError(userID, "", ErrCodeInvalidFormat, "Invalid message format")
		return
	}

	switch ev.Type {
	case TypePlayerJoined:
		var data joinEventData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			co.sendError(userID, ev.MatchID, ErrCodeInvalidFormat, "Invalid message format")
			return
		}
		co.HandleJoin(ev.MatchID, userID, data.Username, data.JoiningCode)
	case TypePlayerLeft:
		var data leaveEventData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			co.sendError(userID, ev.MatchID, ErrCodeInvalidFormat, "Invalid message format")
			return
		}
		co.HandleLeave(ev.MatchID, userID)
	case TypeCodeShared:
		var data codeSharedEventData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			co.sendError(userID, ev.MatchID, ErrCodeInvalidFormat, "Invalid message format")
			return
		}
		co.HandleCodeShared(ev.MatchID, userID, data.Username, data.JoiningCode)
	default:
		// not an error: unknown kinds are logged and ignored
		logger.Debug.Printf("[coordinator] ignoring message type %q from %s", ev.Type, userID)
	}
}

// HandleJoin adds the participant to the match. The first participant is told
// to wait; the arrival of a second one flips the match to ready: MATCH_READY
// goes to everyone (carrying any pending join code) and PLAYER_JOINED to
// everyone except the joiner.
func (co *Coordinator) HandleJoin(matchID, userID, username, joiningCode string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	size := co.presence.Join(matchID, userID, username)
	if joiningCode != "" {
		co.presence.SetJoinCode(matchID, joiningCode)
	}
	logger.Info.Printf("[coordinator] %s (%s) joined match %s, %d present", username, userID, matchID, size)

	if size == 1 {
		co.sender.Send(userID, newEnvelope(TypeWaitingForPlayers, WaitingData{
			MatchID: matchID,
			Message: "Waiting for your opponent to join",
		}, matchID, userID))
		return
	}

	ready := newEnvelope(TypeMatchReady, MatchReadyData{
		MatchID:      matchID,
		TotalPlayers: size,
		JoiningCode:  co.presence.JoinCode(matchID),
	}, matchID, userID)
	joined := newEnvelope(TypePlayerJoined, PlayerJoinedData{
		PlayerID:     userID,
		Username:     username,
		MatchID:      matchID,
		TotalPlayers: size,
	}, matchID, userID)

	for id := range co.presence.Participants(matchID) {
		co.sender.Send(id, ready)
		if id != userID {
			co.sender.Send(id, joined)
		}
	}
	publishMatchReady(matchID)
}

// HandleLeave removes the participant. The last participant leaving deletes
// the record with no broadcast; a participant left alone gets PLAYER_LEFT
// followed by WAITING_FOR_PLAYERS.
func (co *Coordinator) HandleLeave(matchID, userID string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.removeFromMatch(matchID, userID)
}

// HandleDisconnect applies leave semantics to every match the participant is
// present in.
func (co *Coordinator) HandleDisconnect(userID string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	for _, matchID := range co.presence.MatchesOf(userID) {
		logger.Info.Printf("[coordinator] user %s disconnected from match %s", userID, matchID)
		co.removeFromMatch(matchID, userID)
	}
}

// removeFromMatch is the shared leave path. Callers hold co.mu.
func (co *Coordinator) removeFromMatch(matchID, userID string) {
	username := co.presence.DisplayName(matchID, userID)
	remaining, present := co.presence.Leave(matchID, userID)
	if !present {
		logger.Debug.Printf("[coordinator] leave for user %s not present in match %s", userID, matchID)
		return
	}
	if remaining == 0 {
		// nobody left to notify
		return
	}

	left := newEnvelope(TypePlayerLeft, PlayerLeftData{
		PlayerID:         userID,
		Username:         username,
		MatchID:          matchID,
		RemainingPlayers: remaining,
	}, matchID, userID)
	for id := range co.presence.Participants(matchID) {
		co.sender.Send(id, left)
		if remaining == 1 {
			co.sender.Send(id, newEnvelope(TypeWaitingForPlayers, WaitingData{
				MatchID: matchID,
				Message: "Your opponent left, waiting for a new player",
			}, matchID, ""))
		}
	}
}

// HandleCodeShared stores the code on the match and relays it to everyone
// present, but only once the match has at least two participants. A solo
// share still stores the code (it is relayed later inside MATCH_READY) and
// answers the requester with INSUFFICIENT_PLAYERS.
func (co *Coordinator) HandleCodeShared(matchID, userID, username, code string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	size, ok := co.presence.SetJoinCode(matchID, code)
	if !ok {
		logger.Warn.Printf("[coordinator] code share for unknown match %s by %s", matchID, userID)
		co.sendError(userID, matchID, ErrCodeInsufficientPlayers, "Join the match before sharing a code")
		return
	}
	if size < 2 {
		co.sendError(userID, matchID, ErrCodeInsufficientPlayers, "Need at least 2 players to share a code")
		return
	}

	shared := newEnvelope(TypeCodeShared, CodeSharedData{
		PlayerID:    userID,
		Username:    username,
		JoiningCode: code,
		MatchID:     matchID,
	}, matchID, userID)
	for id := range co.presence.Participants(matchID) {
		co.sender.Send(id, shared)
	}
}

// NotifyMatchCompleted broadcasts the final outcome to every participant
// still present in the match. Called by the submission pipeline.
func (co *Coordinator) NotifyMatchCompleted(matchID string, data MatchCompletedData) {
	co.mu.Lock()
	defer co.mu.Unlock()

	data.MatchID = matchID
	env := newEnvelope(TypeMatchCompleted, data, matchID, data.WinnerID)
	for id := range co.presence.Participants(matchID) {
		co.sender.Send(id, env)
	}
	logger.Info.Printf("[coordinator] match %s completed (tie=%v, winner=%s)", matchID, data.IsTie, data.WinnerID)
}

func (co *Coordinator) sendError(userID, matchID, code, message string) {
	co.sender.Send(userID, newEnvelope(TypeError, ErrorData{Code: code, Message: message}, matchID, userID))
}
