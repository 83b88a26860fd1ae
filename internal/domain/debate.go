package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase is one stage of a debate. The speaking sequence runs from
// ESCROW_LOCKED to CONCLUDED; phases outside that range are administrative.
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhaseChallengeIssued   Phase = "CHALLENGE_ISSUED"
	PhaseChallengeAccepted Phase = "CHALLENGE_ACCEPTED"
	PhaseEscrowLocking     Phase = "ESCROW_LOCKING"
	PhaseEscrowLocked      Phase = "ESCROW_LOCKED"
	PhaseOpeningA          Phase = "OPENING_A"
	PhaseOpeningB          Phase = "OPENING_B"
	PhaseRebuttalA1        Phase = "REBUTTAL_A_1"
	PhaseRebuttalB1        Phase = "REBUTTAL_B_1"
	PhaseRebuttalA2        Phase = "REBUTTAL_A_2"
	PhaseRebuttalB2        Phase = "REBUTTAL_B_2"
	PhaseClosingA          Phase = "CLOSING_A"
	PhaseClosingB          Phase = "CLOSING_B"
	PhaseConcluded         Phase = "CONCLUDED"
	PhaseAwaitingVerdict   Phase = "AWAITING_VERDICT"
	PhaseSettled           Phase = "SETTLED"
)

// PhaseSequence is the fixed forward-only order of a debate once escrow
// is locked. No phase is ever revisited.
var PhaseSequence = []Phase{
	PhaseEscrowLocked,
	PhaseOpeningA,
	PhaseOpeningB,
	PhaseRebuttalA1,
	PhaseRebuttalB1,
	PhaseRebuttalA2,
	PhaseRebuttalB2,
	PhaseClosingA,
	PhaseClosingB,
	PhaseConcluded,
}

// Role is a participant's side in a debate.
type Role string

const (
	RoleChallenger Role = "challenger"
	RoleChallenged Role = "challenged"
	RoleNone       Role = ""
)

var phaseSpeaker = map[Phase]Role{
	PhaseOpeningA:   RoleChallenger,
	PhaseOpeningB:   RoleChallenged,
	PhaseRebuttalA1: RoleChallenger,
	PhaseRebuttalB1: RoleChallenged,
	PhaseRebuttalA2: RoleChallenger,
	PhaseRebuttalB2: RoleChallenged,
	PhaseClosingA:   RoleChallenger,
	PhaseClosingB:   RoleChallenged,
}

var phaseDisplay = map[Phase]string{
	PhaseIdle:              "Idle",
	PhaseChallengeIssued:   "Challenge Issued",
	PhaseChallengeAccepted: "Challenge Accepted",
	PhaseEscrowLocking:     "Locking Escrow",
	PhaseEscrowLocked:      "Escrow Locked",
	PhaseOpeningA:          "Opening Statement",
	PhaseOpeningB:          "Opening Statement",
	PhaseRebuttalA1:        "Rebuttal | Round 1",
	PhaseRebuttalB1:        "Rebuttal | Round 1",
	PhaseRebuttalA2:        "Rebuttal | Round 2",
	PhaseRebuttalB2:        "Rebuttal | Round 2",
	PhaseClosingA:          "Closing Statement",
	PhaseClosingB:          "Closing Statement",
	PhaseConcluded:         "Concluded",
	PhaseAwaitingVerdict:   "Awaiting Verdict",
	PhaseSettled:           "Settled",
}

// Speaker returns which role speaks during this phase, or RoleNone for
// administrative phases.
func (p Phase) Speaker() Role {
	return phaseSpeaker[p]
}

// Display returns the human-readable phase label used in channel posts.
func (p Phase) Display() string {
	if d, ok := phaseDisplay[p]; ok {
		return d
	}
	return string(p)
}

// Debate format defaults.
const (
	DefaultMaxRounds   = 2
	DefaultStakeAmount = int64(100_000_000)
	ResponseTimeout    = 5 * time.Minute
	MinArgumentLength  = 100
	MaxArgumentLength  = 500
)

// Participant is one side of a debate session.
type Participant struct {
	AgentID int    `json:"agent_id"`
	Name    string `json:"name"`
	Belief  string `json:"belief"`
}

// Turn is a single utterance within a debate phase. Immutable once
// appended to a transcript.
type Turn struct {
	ID        uuid.UUID `json:"id"`
	AgentID   int       `json:"agent_id"`
	Agent     string    `json:"agent"`
	Phase     Phase     `json:"phase"`
	Content   string    `json:"content"`
	Strategy  Strategy  `json:"strategy"`
	Timestamp time.Time `json:"timestamp"`
}

// DebateSession is the full state of one contest. The debate id comes
// from the external ledger's escrow creation.
type DebateSession struct {
	DebateID    int64       `json:"debate_id"`
	Topic       string      `json:"topic"`
	StakeAmount int64       `json:"stake_amount"`
	Challenger  Participant `json:"challenger"`
	Challenged  Participant `json:"challenged"`

	CurrentPhase    Phase `json:"current_phase"`
	RoundsCompleted int   `json:"rounds_completed"`
	MaxRounds       int   `json:"max_rounds"`

	// Transcript is append-only, one turn per speaking phase.
	// ArgumentsUsed mirrors the raw text for diversity comparison.
	Transcript    []Turn   `json:"transcript"`
	ArgumentsUsed []string `json:"arguments_used"`

	ChannelID      string    `json:"channel_id"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// ConvictionEvaluated flips once the concluded transcript has been
	// scored, so the conviction impact applies exactly once per debate.
	ConvictionEvaluated bool `json:"conviction_evaluated,omitempty"`
}

// NewDebateSession creates a session at challenge issuance.
func NewDebateSession(debateID int64, topic string, stake int64, challenger, challenged Participant, channelID string) *DebateSession {
	now := time.Now()
	return &DebateSession{
		DebateID:       debateID,
		Topic:          topic,
		StakeAmount:    stake,
		Challenger:     challenger,
		Challenged:     challenged,
		CurrentPhase:   PhaseChallengeIssued,
		MaxRounds:      DefaultMaxRounds,
		ChannelID:      channelID,
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// Advance moves the session to the next phase in the fixed sequence.
// A no-op at the terminal phase, and for phases outside the sequence.
func (s *DebateSession) Advance() {
	idx := -1
	for i, p := range PhaseSequence {
		if p == s.CurrentPhase {
			idx = i
			break
		}
	}
	if idx == -1 || idx >= len(PhaseSequence)-1 {
		return
	}

	switch s.CurrentPhase {
	case PhaseRebuttalB1:
		s.RoundsCompleted = 1
	case PhaseRebuttalB2:
		s.RoundsCompleted = 2
	}

	s.CurrentPhase = PhaseSequence[idx+1]
	s.LastActivityAt = time.Now()
}

// IsTurn reports whether the given role speaks in the current phase.
func (s *DebateSession) IsTurn(role Role) bool {
	speaker := s.CurrentPhase.Speaker()
	return speaker != RoleNone && speaker == role
}

// Active reports whether the debate is in a speaking phase. Nil
// sessions, concluded debates and post-verdict states are not active.
func (s *DebateSession) Active() bool {
	if s == nil {
		return false
	}
	switch s.CurrentPhase {
	case PhaseEscrowLocked, PhaseOpeningA, PhaseOpeningB,
		PhaseRebuttalA1, PhaseRebuttalB1, PhaseRebuttalA2, PhaseRebuttalB2,
		PhaseClosingA, PhaseClosingB:
		return true
	}
	return false
}

// AwaitingVerdict reports whether the debate has finished speaking and
// waits on the external judge.
func (s *DebateSession) AwaitingVerdict() bool {
	if s == nil {
		return false
	}
	return s.CurrentPhase == PhaseConcluded || s.CurrentPhase == PhaseAwaitingVerdict
}

// TimedOut reports whether the current speaker has let the session go
// stale. Only meaningful while the debate is active.
func (s *DebateSession) TimedOut(timeout time.Duration) bool {
	if !s.Active() {
		return false
	}
	return time.Since(s.LastActivityAt) > timeout
}

// AppendTurn adds an utterance to the transcript. Turns are never
// reordered or mutated afterwards.
func (s *DebateSession) AppendTurn(t Turn) {
	s.Transcript = append(s.Transcript, t)
	s.ArgumentsUsed = append(s.ArgumentsUsed, t.Content)
	s.LastActivityAt = time.Now()
}

// Participant returns the participant holding the given role.
func (s *DebateSession) Participant(role Role) Participant {
	if role == RoleChallenger {
		return s.Challenger
	}
	return s.Challenged
}

// Opponent returns the participant opposite the given role.
func (s *DebateSession) Opponent(role Role) Participant {
	if role == RoleChallenger {
		return s.Challenged
	}
	return s.Challenger
}

// RoleOf resolves which role an agent id holds, or RoleNone.
func (s *DebateSession) RoleOf(agentID int) Role {
	switch agentID {
	case s.Challenger.AgentID:
		return RoleChallenger
	case s.Challenged.AgentID:
		return RoleChallenged
	}
	return RoleNone
}

// ArgumentsBy returns all transcript contents spoken by the named agent.
func (s *DebateSession) ArgumentsBy(agent string) []string {
	var out []string
	for _, t := range s.Transcript {
		if t.Agent == agent {
			out = append(out, t.Content)
		}
	}
	return out
}

// LastArgumentAgainst returns the most recent turn not spoken by the
// named agent, or nil if the opponent has not spoken yet.
func (s *DebateSession) LastArgumentAgainst(agent string) *Turn {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Agent != agent {
			return &s.Transcript[i]
		}
	}
	return nil
}

// FormatTranscript renders the transcript for prompt context.
func (s *DebateSession) FormatTranscript() string {
	if len(s.Transcript) == 0 {
		return "(No messages yet)"
	}
	parts := make([]string, 0, len(s.Transcript))
	for _, t := range s.Transcript {
		parts = append(parts, "["+t.Agent+" — "+t.Phase.Display()+"]\n"+t.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
