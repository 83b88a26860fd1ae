package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *DebateSession {
	s := NewDebateSession(7, "Does virtue require belief in meaning?", DefaultStakeAmount,
		Participant{AgentID: 1, Name: "Seneca", Belief: "Stoicism"},
		Participant{AgentID: 2, Name: "Nihilo", Belief: "Nihilism"},
		"arena")
	s.CurrentPhase = PhaseEscrowLocked
	return s
}

func TestAdvanceWalksFullSequence(t *testing.T) {
	s := newTestSession()

	for i := 0; i < len(PhaseSequence)-1; i++ {
		require.Equal(t, PhaseSequence[i], s.CurrentPhase)
		s.Advance()
	}
	assert.Equal(t, PhaseConcluded, s.CurrentPhase)
	assert.Equal(t, 2, s.RoundsCompleted)
}

func TestAdvanceIdempotentAtTerminal(t *testing.T) {
	s := newTestSession()
	s.CurrentPhase = PhaseConcluded
	s.RoundsCompleted = 2
	before := s.LastActivityAt

	s.Advance()
	s.Advance()

	assert.Equal(t, PhaseConcluded, s.CurrentPhase)
	assert.Equal(t, before, s.LastActivityAt)
}

func TestAdvanceNoOpOutsideSequence(t *testing.T) {
	s := newTestSession()
	s.CurrentPhase = PhaseAwaitingVerdict
	s.Advance()
	assert.Equal(t, PhaseAwaitingVerdict, s.CurrentPhase)
}

func TestRoundsCompletedIncrements(t *testing.T) {
	s := newTestSession()

	s.CurrentPhase = PhaseRebuttalB1
	s.Advance()
	assert.Equal(t, 1, s.RoundsCompleted)
	assert.Equal(t, PhaseRebuttalA2, s.CurrentPhase)

	s.CurrentPhase = PhaseRebuttalB2
	s.Advance()
	assert.Equal(t, 2, s.RoundsCompleted)
}

func TestIsTurnFollowsSpeakerMap(t *testing.T) {
	s := newTestSession()

	s.CurrentPhase = PhaseOpeningA
	assert.True(t, s.IsTurn(RoleChallenger))
	assert.False(t, s.IsTurn(RoleChallenged))

	s.CurrentPhase = PhaseRebuttalB2
	assert.True(t, s.IsTurn(RoleChallenged))
	assert.False(t, s.IsTurn(RoleChallenger))

	// Nobody speaks in administrative phases.
	s.CurrentPhase = PhaseEscrowLocked
	assert.False(t, s.IsTurn(RoleChallenger))
	assert.False(t, s.IsTurn(RoleChallenged))
	assert.False(t, s.IsTurn(RoleNone))
}

func TestActiveAndAwaitingVerdict(t *testing.T) {
	var nilSession *DebateSession
	assert.False(t, nilSession.Active())

	s := newTestSession()
	assert.True(t, s.Active())

	s.CurrentPhase = PhaseClosingB
	assert.True(t, s.Active())

	for _, p := range []Phase{PhaseConcluded, PhaseAwaitingVerdict, PhaseSettled} {
		s.CurrentPhase = p
		assert.False(t, s.Active(), "phase %s should not be active", p)
	}

	s.CurrentPhase = PhaseConcluded
	assert.True(t, s.AwaitingVerdict())
	s.CurrentPhase = PhaseAwaitingVerdict
	assert.True(t, s.AwaitingVerdict())
	s.CurrentPhase = PhaseSettled
	assert.False(t, s.AwaitingVerdict())
}

func TestTimedOutOnlyWhileActive(t *testing.T) {
	s := newTestSession()
	s.CurrentPhase = PhaseOpeningA
	s.LastActivityAt = time.Now().Add(-10 * time.Minute)
	assert.True(t, s.TimedOut(ResponseTimeout))

	s.LastActivityAt = time.Now()
	assert.False(t, s.TimedOut(ResponseTimeout))

	// A concluded debate never times out.
	s.CurrentPhase = PhaseConcluded
	s.LastActivityAt = time.Now().Add(-time.Hour)
	assert.False(t, s.TimedOut(ResponseTimeout))
}

func TestTranscriptHelpers(t *testing.T) {
	s := newTestSession()
	s.CurrentPhase = PhaseOpeningA

	s.AppendTurn(Turn{Agent: "Seneca", AgentID: 1, Phase: PhaseOpeningA, Content: "virtue is its own reward"})
	s.AppendTurn(Turn{Agent: "Nihilo", AgentID: 2, Phase: PhaseOpeningB, Content: "reward is an empty word"})
	s.AppendTurn(Turn{Agent: "Seneca", AgentID: 1, Phase: PhaseRebuttalA1, Content: "yet you argue as if it mattered"})

	require.Len(t, s.Transcript, 3)
	require.Len(t, s.ArgumentsUsed, 3)

	mine := s.ArgumentsBy("Seneca")
	assert.Equal(t, []string{"virtue is its own reward", "yet you argue as if it mattered"}, mine)

	last := s.LastArgumentAgainst("Seneca")
	require.NotNil(t, last)
	assert.Equal(t, "Nihilo", last.Agent)

	assert.Contains(t, s.FormatTranscript(), "[Nihilo — Opening Statement]")
}

func TestRoleHelpers(t *testing.T) {
	s := newTestSession()

	assert.Equal(t, RoleChallenger, s.RoleOf(1))
	assert.Equal(t, RoleChallenged, s.RoleOf(2))
	assert.Equal(t, RoleNone, s.RoleOf(99))

	assert.Equal(t, "Nihilo", s.Opponent(RoleChallenger).Name)
	assert.Equal(t, "Seneca", s.Opponent(RoleChallenged).Name)
	assert.Equal(t, "Seneca", s.Participant(RoleChallenger).Name)
}

func TestBeliefIDFromName(t *testing.T) {
	id, ok := BeliefIDFromName("secular nihilism")
	require.True(t, ok)
	assert.Equal(t, BeliefNihilism, id)

	id, ok = BeliefIDFromName("Stoicism")
	require.True(t, ok)
	assert.Equal(t, BeliefStoicism, id)

	_, ok = BeliefIDFromName("solipsism")
	assert.False(t, ok)
}
