package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsequitr/relay/internal/domain"
)

type stubRand struct{ v int }

func (s stubRand) IntN(n int) int { return s.v % n }

func TestHistoryBoundKeepsMostRecent(t *testing.T) {
	r := NewRoom("ABCD")
	for i := 0; i < HistoryLimit+10; i++ {
		r.AppendMessage(domain.Message{ID: int64(i), OriginalText: fmt.Sprintf("msg %d", i)})
	}

	h := r.History()
	require.Len(t, h, HistoryLimit)
	// FIFO eviction: the first 10 are gone, order preserved.
	for i, m := range h {
		assert.Equal(t, int64(i+10), m.ID)
	}
}

func TestHistorySnapshotIsIndependent(t *testing.T) {
	r := NewRoom("ABCD")
	r.AppendMessage(domain.Message{ID: 1})
	snap := r.History()
	r.AppendMessage(domain.Message{ID: 2})

	require.Len(t, snap, 1)
	require.Len(t, r.History(), 2)
}

func TestLearnTopicsAlignsByIndex(t *testing.T) {
	r := NewRoom("ABCD")
	r.LearnTopics("the cat sat", "le chat assis", []int{1})

	require.Equal(t, 1, r.TopicCount())
	assert.Equal(t, "chat", r.keyTopics["cat"])
}

func TestLearnTopicsSkipsOutOfRange(t *testing.T) {
	r := NewRoom("ABCD")
	r.LearnTopics("the cat sat", "le chat assis", []int{5})
	assert.Equal(t, 0, r.TopicCount())

	// One good index among bad ones still lands.
	r.LearnTopics("the cat sat", "le chat assis", []int{-1, 2, 7})
	require.Equal(t, 1, r.TopicCount())
	assert.Equal(t, "assis", r.keyTopics["sat"])
}

func TestLearnTopicsLastWriteWins(t *testing.T) {
	r := NewRoom("ABCD")
	r.LearnTopics("cat", "chat", []int{0})
	r.LearnTopics("cat", "gato", []int{0})

	require.Equal(t, 1, r.TopicCount())
	assert.Equal(t, "gato", r.keyTopics["cat"])
}

func TestLearnTopicsLowercases(t *testing.T) {
	r := NewRoom("ABCD")
	r.LearnTopics("The CAT sat", "Le CHAT assis", []int{1})
	assert.Equal(t, "chat", r.keyTopics["cat"])
}

func TestRemoveParticipantPreservesOrder(t *testing.T) {
	r := NewRoom("ABCD")
	r.AddParticipant(domain.Participant{ConnectionID: "a", DisplayName: "Ann"})
	r.AddParticipant(domain.Participant{ConnectionID: "b", DisplayName: "Bob"})
	r.AddParticipant(domain.Participant{ConnectionID: "c", DisplayName: "Cam"})

	roster := r.RemoveParticipant("b")
	require.Len(t, roster, 2)
	assert.Equal(t, domain.ConnectionID("a"), roster[0].ID)
	assert.Equal(t, domain.ConnectionID("c"), roster[1].ID)

	// Absent id is a no-op, never an error.
	roster = r.RemoveParticipant("zz")
	assert.Len(t, roster, 2)
}

func TestDuplicateDisplayNamesAllowed(t *testing.T) {
	r := NewRoom("ABCD")
	r.AddParticipant(domain.Participant{ConnectionID: "a", DisplayName: "Ann"})
	roster := r.AddParticipant(domain.Participant{ConnectionID: "b", DisplayName: "Ann"})
	assert.Len(t, roster, 2)
}

func TestPickTopicEmpty(t *testing.T) {
	r := NewRoom("ABCD")
	_, _, ok := r.PickTopic(stubRand{})
	assert.False(t, ok)
}

func TestPickTopicDeterministicWithPinnedSource(t *testing.T) {
	r := NewRoom("ABCD")
	r.LearnTopics("apple banana cherry", "pomme banane cerise", []int{0, 1, 2})

	// Keys are ordered, so a pinned source selects a stable pair.
	orig, trans, ok := r.PickTopic(stubRand{v: 1})
	require.True(t, ok)
	assert.Equal(t, "banana", orig)
	assert.Equal(t, "banane", trans)
}
