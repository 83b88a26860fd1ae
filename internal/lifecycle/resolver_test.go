package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agora-arena/agora/internal/domain"
)

func record(conviction int) *domain.BeliefRecord {
	r := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	r.Conviction = conviction
	return r
}

func TestResolvePriorityOrder(t *testing.T) {
	session := domain.NewDebateSession(1, "topic", 100, domain.Participant{AgentID: 7}, domain.Participant{AgentID: 3}, "")
	session.CurrentPhase = domain.PhaseOpeningA

	concluded := domain.NewDebateSession(2, "topic", 100, domain.Participant{AgentID: 7}, domain.Participant{AgentID: 3}, "")
	concluded.CurrentPhase = domain.PhaseConcluded

	cases := []struct {
		name string
		snap Snapshot
		want State
	}{
		{"exited wins over everything", Snapshot{Exited: true, Record: record(85), Entered: true, Staked: true}, StateExited},
		{"no record", Snapshot{Entered: true}, StateUninitialized},
		{"not entered", Snapshot{Record: record(85)}, StateUninitialized},
		{"entered but unstaked", Snapshot{Record: record(85), Entered: true}, StateEntered},
		{"awaiting verdict", Snapshot{Record: record(85), Entered: true, Staked: true, Session: concluded}, StateAwaitingVerdict},
		{"in debate", Snapshot{Record: record(85), Entered: true, Staked: true, Session: session}, StateInDebate},
		{"converting below threshold", Snapshot{Record: record(15), Entered: true, Staked: true}, StateConverting},
		{"active", Snapshot{Record: record(85), Entered: true, Staked: true}, StateActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.snap))
		})
	}
}

func TestResolveChallengeIssuedCountsAsInDebate(t *testing.T) {
	session := domain.NewDebateSession(1, "topic", 100, domain.Participant{AgentID: 7}, domain.Participant{AgentID: 3}, "")
	state := Resolve(Snapshot{Record: record(85), Entered: true, Staked: true, Session: session})
	assert.Equal(t, StateInDebate, state)
}

func TestResolveDebateOutranksConverting(t *testing.T) {
	// Low conviction mid-debate stays IN_DEBATE; conversion resolves
	// only once the debate is settled.
	session := domain.NewDebateSession(1, "topic", 100, domain.Participant{AgentID: 7}, domain.Participant{AgentID: 3}, "")
	session.CurrentPhase = domain.PhaseRebuttalB1

	state := Resolve(Snapshot{Record: record(10), Entered: true, Staked: true, Session: session})
	assert.Equal(t, StateInDebate, state)
}

func TestCapabilities(t *testing.T) {
	assert.True(t, StateActive.CanDebate())
	assert.True(t, StateActive.CanPreach())
	assert.True(t, StateInDebate.CanPreach())
	assert.False(t, StateInDebate.CanDebate())
	assert.False(t, StateConverting.CanDebate())
	assert.False(t, StateConverting.CanPreach())
	assert.False(t, StateEntered.CanPreach())
	assert.False(t, StateExited.CanDebate())

	assert.True(t, StateUninitialized.NeedsOnboarding())
	assert.True(t, StateEntered.NeedsOnboarding())
	assert.False(t, StateActive.NeedsOnboarding())
	assert.True(t, StateConverting.NeedsConversion())
	assert.False(t, StateActive.NeedsConversion())
}
