// Package websocket provides the real-time match presence server: the
// connection registry, the per-match presence table and the coordinator that
// drives presence broadcasts.
// file: websocket/message.go
package websocket

import (
	"encoding/json"
	"time"
)

// MessageType enumerates every envelope kind the protocol speaks.
type MessageType string

const (
	TypePlayerJoined      MessageType = "PLAYER_JOINED"
	TypePlayerLeft        MessageType = "PLAYER_LEFT"
	TypeCodeShared        MessageType = "CODE_SHARED"
	TypeMatchReady        MessageType = "MATCH_READY"
	TypeWaitingForPlayers MessageType = "WAITING_FOR_PLAYERS"
	TypeMatchCompleted    MessageType = "MATCH_COMPLETED"
	TypeError             MessageType = "ERROR"
)

// Error codes carried inside an ERROR envelope.
const (
	ErrCodeInvalidFormat       = "INVALID_FORMAT"
	ErrCodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
)

// Envelope is the wire frame for every server-to-client message. Data is
// always one of the payload structs below; construction goes through the
// typed helpers so a handler can never emit an unknown kind.
type Envelope struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data"`
	MatchID   string      `json:"matchId,omitempty"`
	Timestamp int64       `json:"timestamp"`
	UserID    string      `json:"userId,omitempty"`
}

// PlayerJoinedData announces a new participant to the others in the match.
type PlayerJoinedData struct {
	PlayerID     string `json:"playerId"`
	Username     string `json:"username"`
	MatchID      string `json:"matchId"`
	TotalPlayers int    `json:"totalPlayers"`
}

// PlayerLeftData announces a departure to the remaining participants.
type PlayerLeftData struct {
	PlayerID         string `json:"playerId"`
	Username         string `json:"username"`
	MatchID          string `json:"matchId"`
	RemainingPlayers int    `json:"remainingPlayers"`
}

// CodeSharedData relays a joining code to everyone in the match.
type CodeSharedData struct {
	PlayerID    string `json:"playerId"`
	Username    string `json:"username"`
	JoiningCode string `json:"joiningCode"`
	MatchID     string `json:"matchId"`
}

// MatchReadyData tells both participants that gameplay can start. JoiningCode
// carries any code that was shared before the second participant arrived.
type MatchReadyData struct {
	MatchID      string `json:"matchId"`
	TotalPlayers int    `json:"totalPlayers"`
	JoiningCode  string `json:"joiningCode,omitempty"`
}

// WaitingData is sent to a sole participant while the opponent is absent.
type WaitingData struct {
	MatchID string `json:"matchId"`
	Message string `json:"message"`
}

// CompletedParticipant is one ranked entry inside a MATCH_COMPLETED payload.
type CompletedParticipant struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// MatchCompletedData carries the final outcome to every connected participant.
type MatchCompletedData struct {
	MatchID        string                 `json:"matchId"`
	IsTie          bool                   `json:"isTie"`
	WinnerID       string                 `json:"winnerId,omitempty"`
	WinnerUsername string                 `json:"winnerUsername,omitempty"`
	PassedTests    int                    `json:"passedTests"`
	TotalTests     int                    `json:"totalTests"`
	ExecutionTime  float64                `json:"executionTime"`
	CompletedAt    int64                  `json:"completedAt"`
	Participants   []CompletedParticipant `json:"participants,omitempty"`
}

// ErrorData is sent back to a single participant, never broadcast.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newEnvelope stamps the frame with the current time in ms epoch.
func newEnvelope(t MessageType, data interface{}, matchID, userID string) Envelope {
	return Envelope{
		Type:      t,
		Data:      data,
		MatchID:   matchID,
		Timestamp: time.Now().UnixMilli(),
		UserID:    userID,
	}
}

// ClientEvent is the inbound frame read off a participant's connection. The
// payload stays raw until the type switch picks the matching struct.
type ClientEvent struct {
	Type    MessageType     `json:"type"`
	Data    json.RawMessage `json:"data"`
	MatchID string          `json:"matchId"`
}

// inbound payloads, one per client-originated kind

type joinEventData struct {
	Username    string `json:"username"`
	JoiningCode string `json:"joiningCode"`
}

type leaveEventData struct {
	Username string `json:"username"`
}

type codeSharedEventData struct {
	Username    string `json:"username"`
	JoiningCode string `json:"joiningCode"`
}
