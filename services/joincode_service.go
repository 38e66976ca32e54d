// Package services holds the match domain services: join-code brokering, the
// submission pipeline, outcome evaluation and the execution collaborator
// client.
// file: services/joincode_service.go
package services

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeclash/logger"
)

// join-code failure modes, mapped onto 4xx responses by the controller
var (
	ErrCodeNotFound       = errors.New("invalid joining code")
	ErrCodeExpired        = errors.New("this joining code has expired")
	ErrSelfJoin           = errors.New("you cannot join your own game")
	ErrAlreadyMatched     = errors.New("this game is already in progress")
	ErrConstraintMismatch = errors.New("both players must have the same difficulty and topic to join the match")
	ErrNotCodeCreator     = errors.New("you don't have permission to check this code")
)

const (
	codeLength    = 6
	codeCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeTTL       = 30 * time.Minute
	sweepInterval = 10 * time.Minute
)

// JoinCodeEntry is the broker's record for one shareable code. MatchID is
// generated at creation so the creator can navigate ahead of pairing; Matched
// flips exactly once when a second participant pairs successfully.
type JoinCodeEntry struct {
	Code       string
	CreatorID  string
	MatchID    string
	Difficulty []string
	Topic      []string
	CreatedAt  time.Time
	Expiry     time.Time
	Matched    bool
}

// JoinCodeBroker owns the short-lived code -> pairing-metadata table. All
// mutation goes through its entry points; a background sweep bounds growth.
type JoinCodeBroker struct {
	mu    sync.Mutex
	codes map[string]*JoinCodeEntry
	now   func() time.Time
	rng   *rand.Rand
	stop  chan struct{}
	once  sync.Once
}

// NewJoinCodeBroker returns a broker with the production TTL and sweep cadence.
func NewJoinCodeBroker() *JoinCodeBroker {
	return &JoinCodeBroker{
		codes: make(map[string]*JoinCodeEntry),
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- codes are share tokens, not secrets
		stop:  make(chan struct{}),
	}
}

// Create generates a code unique among currently-live codes and records it
// with a fixed 30 minute expiry.
func (b *JoinCodeBroker) Create(creatorID string, difficulty, topic []string) *JoinCodeEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	code := b.generateCode()
	for _, exists := b.codes[code]; exists; _, exists = b.codes[code] {
		code = b.generateCode()
	}

	entry := &JoinCodeEntry{
		Code:       code,
		CreatorID:  creatorID,
		MatchID:    uuid.New().String(),
		Difficulty: append([]string(nil), difficulty...),
		Topic:      append([]string(nil), topic...),
		CreatedAt:  b.now(),
		Expiry:     b.now().Add(codeTTL),
	}
	b.codes[code] = entry
	logger.Info.Printf("[joincode] user %s created code %s (difficulty=%v, topic=%v)", creatorID, code, difficulty, topic)
	return entry
}

// Join validates a pairing attempt and, on success, marks the entry matched.
// Codes are single-use: a code that already paired cannot pair again. An
// expired code is evicted as a side effect of the failed lookup.
func (b *JoinCodeBroker) Join(code, joinerID string, difficulty, topic []string) (*JoinCodeEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if entry.Expiry.Before(b.now()) {
		delete(b.codes, code)
		return nil, ErrCodeExpired
	}
	if entry.CreatorID == joinerID {
		return nil, ErrSelfJoin
	}
	if entry.Matched {
		return nil, ErrAlreadyMatched
	}
	// both sides submit single-element selections; compare the primary one
	if first(entry.Difficulty) != first(difficulty) || first(entry.Topic) != first(topic) {
		return nil, ErrConstraintMismatch
	}

	entry.Matched = true
	logger.Info.Printf("[joincode] user %s joined code %s, match %s", joinerID, code, entry.MatchID)
	return entry, nil
}

// Release unmarks a matched entry. Used when the persistence step of pairing
// fails after Join succeeded, so the code becomes joinable again.
func (b *JoinCodeBroker) Release(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.codes[code]; ok {
		entry.Matched = false
		logger.Warn.Printf("[joincode] released code %s after failed pairing", code)
	}
}

// Check reports pairing status to the code's creator. Anyone else gets
// ErrNotCodeCreator.
func (b *JoinCodeBroker) Check(code, userID string) (*JoinCodeEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if entry.CreatorID != userID {
		return nil, ErrNotCodeCreator
	}
	cp := *entry
	return &cp, nil
}

// StartSweeper launches the periodic eviction of expired codes. Stop ends it.
func (b *JoinCodeBroker) StartSweeper() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.Sweep()
			case <-b.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper goroutine.
func (b *JoinCodeBroker) Stop() {
	b.once.Do(func() { close(b.stop) })
}

// Sweep evicts every entry past expiry regardless of access.
func (b *JoinCodeBroker) Sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for code, entry := range b.codes {
		if entry.Expiry.Before(now) {
			delete(b.codes, code)
			logger.Debug.Printf("[joincode] swept expired code %s", code)
		}
	}
}

// Live reports the number of unexpired entries currently held.
func (b *JoinCodeBroker) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.codes)
}

func (b *JoinCodeBroker) generateCode() string {
	var sb strings.Builder
	sb.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		sb.WriteByte(codeCharset[b.rng.Intn(len(codeCharset))])
	}
	return sb.String()
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
