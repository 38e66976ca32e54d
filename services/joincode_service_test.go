//go:build unit

// services/joincode_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCodeBroker_CreateThenJoin(t *testing.T) {
	b := NewJoinCodeBroker()

	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})
	require.Len(t, entry.Code, codeLength)
	require.NotEmpty(t, entry.MatchID)
	assert.False(t, entry.Matched)

	joined, err := b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	require.NoError(t, err)
	assert.Equal(t, "creator", joined.CreatorID)
	assert.Equal(t, entry.MatchID, joined.MatchID)
	assert.True(t, joined.Matched)
}

func TestJoinCodeBroker_ConstraintMismatch(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	_, err := b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"GRAPH"})
	assert.ErrorIs(t, err, ErrConstraintMismatch)

	_, err = b.Join(entry.Code, "joiner", []string{"HARD"}, []string{"ARRAY"})
	assert.ErrorIs(t, err, ErrConstraintMismatch)

	// a mismatch must not consume the code
	_, err = b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	assert.NoError(t, err)
}

func TestJoinCodeBroker_SingleUse(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	_, err := b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	require.NoError(t, err)

	_, err = b.Join(entry.Code, "third-wheel", []string{"EASY"}, []string{"ARRAY"})
	assert.ErrorIs(t, err, ErrAlreadyMatched)
}

func TestJoinCodeBroker_SelfJoinRejected(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	_, err := b.Join(entry.Code, "creator", []string{"EASY"}, []string{"ARRAY"})
	assert.ErrorIs(t, err, ErrSelfJoin)
}

func TestJoinCodeBroker_UnknownCode(t *testing.T) {
	b := NewJoinCodeBroker()
	_, err := b.Join("NOPE42", "joiner", []string{"EASY"}, []string{"ARRAY"})
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestJoinCodeBroker_ExpiredCodeEvictedOnJoin(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	// move the clock past the TTL
	b.now = func() time.Time { return time.Now().Add(codeTTL + time.Minute) }

	_, err := b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	assert.ErrorIs(t, err, ErrCodeExpired)
	assert.Equal(t, 0, b.Live(), "expired entry is evicted as a side effect")
}

func TestJoinCodeBroker_SweepEvictsExpiredOnly(t *testing.T) {
	b := NewJoinCodeBroker()
	b.Create("creator-1", []string{"EASY"}, []string{"ARRAY"})

	// age the first code, then create a fresh one under the advanced clock
	b.now = func() time.Time { return time.Now().Add(codeTTL + time.Minute) }
	fresh := b.Create("creator-2", []string{"HARD"}, []string{"GRAPH"})

	b.Sweep()

	assert.Equal(t, 1, b.Live())
	_, err := b.Check(fresh.Code, "creator-2")
	assert.NoError(t, err)
}

func TestJoinCodeBroker_CheckIsCreatorOnly(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	status, err := b.Check(entry.Code, "creator")
	require.NoError(t, err)
	assert.False(t, status.Matched)

	_, err = b.Check(entry.Code, "somebody-else")
	assert.ErrorIs(t, err, ErrNotCodeCreator)

	_, err = b.Check("NOPE42", "creator")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestJoinCodeBroker_ReleaseMakesCodeJoinableAgain(t *testing.T) {
	b := NewJoinCodeBroker()
	entry := b.Create("creator", []string{"EASY"}, []string{"ARRAY"})

	_, err := b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	require.NoError(t, err)

	// pairing persistence failed downstream; the slot reopens
	b.Release(entry.Code)

	_, err = b.Join(entry.Code, "joiner", []string{"EASY"}, []string{"ARRAY"})
	assert.NoError(t, err)
}
