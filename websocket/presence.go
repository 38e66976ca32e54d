// file: websocket/presence.go
package websocket

import (
	"sync"

	"codeclash/logger"
)

// matchPresence is the per-match record: who is currently connected to the
// match, keyed by participant id, plus any join code shared so far.
type matchPresence struct {
	players  map[string]string // participant id -> display name
	joinCode string
}

// PresenceTable tracks which participants are present in which match. Records
// are created lazily on the first join and deleted as soon as the last
// participant leaves; a record therefore exists iff its set is non-empty.
type PresenceTable struct {
	mu      sync.Mutex
	matches map[string]*matchPresence
}

// NewPresenceTable returns an empty table.
func NewPresenceTable() *PresenceTable {
	return &PresenceTable{matches: make(map[string]*matchPresence)}
}

// Join adds a participant and returns the resulting set size.
func (t *PresenceTable) Join(matchID, userID, displayName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.matches[matchID]
	if !ok {
		logger.Info.Printf("[presence] creating presence record for match %s", matchID)
		m = &matchPresence{players: make(map[string]string)}
		t.matches[matchID] = m
	}
	m.players[userID] = displayName
	return len(m.players)
}

// Leave removes a participant. It returns the remaining set size and whether
// the participant was actually present. The record is deleted when empty.
func (t *PresenceTable) Leave(matchID, userID string) (remaining int, present bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.matches[matchID]
	if !ok {
		return 0, false
	}
	if _, present = m.players[userID]; !present {
		return len(m.players), false
	}
	delete(m.players, userID)
	if len(m.players) == 0 {
		delete(t.matches, matchID)
		logger.Info.Printf("[presence] match %s is empty, deleting presence record", matchID)
		return 0, true
	}
	return len(m.players), true
}

// SetJoinCode stores or overwrites the match's join code. It reports the
// current set size and whether a record exists; a code cannot be attached to
// a match nobody has joined.
func (t *PresenceTable) SetJoinCode(matchID, code string) (size int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, exists := t.matches[matchID]
	if !exists {
		return 0, false
	}
	m.joinCode = code
	return len(m.players), true
}

// JoinCode returns the code shared for the match, if any.
func (t *PresenceTable) JoinCode(matchID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.matches[matchID]; ok {
		return m.joinCode
	}
	return ""
}

// Participants returns a copy of the participant set for the match.
func (t *PresenceTable) Participants(matchID string) map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]string)
	if m, ok := t.matches[matchID]; ok {
		for id, name := range m.players {
			out[id] = name
		}
	}
	return out
}

// DisplayName reports the stored display name for a participant in a match.
func (t *PresenceTable) DisplayName(matchID, userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.matches[matchID]; ok {
		return m.players[userID]
	}
	return ""
}

// MatchesOf lists every match the participant is currently present in. A
// participant can be tracked in more than one match at a time.
func (t *PresenceTable) MatchesOf(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for matchID, m := range t.matches {
		if _, ok := m.players[userID]; ok {
			out = append(out, matchID)
		}
	}
	return out
}

// Size reports the current set size for the match, zero when no record exists.
func (t *PresenceTable) Size(matchID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.matches[matchID]; ok {
		return len(m.players)
	}
	return 0
}

// Has reports whether a presence record exists for the match.
func (t *PresenceTable) Has(matchID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.matches[matchID]
	return ok
}
