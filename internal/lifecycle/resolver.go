// Package lifecycle derives an agent's operational state from observed
// facts. The state is never stored; it is recomputed every cycle so a
// crashed or restarted agent resumes exactly where the facts put it.
package lifecycle

import "github.com/agora-arena/agora/internal/domain"

// State is an agent's current standing in the arena.
type State string

const (
	StateUninitialized   State = "UNINITIALIZED"
	StateEntered         State = "ENTERED"
	StateActive          State = "ACTIVE"
	StateInDebate        State = "IN_DEBATE"
	StateAwaitingVerdict State = "AWAITING_VERDICT"
	StateConverting      State = "CONVERTING"
	StateExited          State = "EXITED"
)

// Snapshot collects the facts the resolver decides from. Session may be
// nil when no debate is active or pending.
type Snapshot struct {
	Record  *domain.BeliefRecord
	Session *domain.DebateSession
	Entered bool
	Staked  bool
	Exited  bool
}

// Resolve maps a snapshot to a state. Checks run in a fixed priority
// order; the first match wins.
func Resolve(s Snapshot) State {
	if s.Exited {
		return StateExited
	}
	if s.Record == nil || !s.Entered {
		return StateUninitialized
	}
	if !s.Staked {
		return StateEntered
	}
	if s.Session.AwaitingVerdict() {
		return StateAwaitingVerdict
	}
	if s.Session.Active() || (s.Session != nil && s.Session.CurrentPhase == domain.PhaseChallengeIssued) {
		return StateInDebate
	}
	threshold := s.Record.ConversionThreshold
	if threshold <= 0 {
		threshold = domain.DefaultConversionThreshold
	}
	if s.Record.Conviction < threshold {
		return StateConverting
	}
	return StateActive
}

// CanDebate reports whether the agent may issue or accept challenges.
func (s State) CanDebate() bool {
	return s == StateActive
}

// CanPreach reports whether the agent may deliver sermons. Sermons are
// allowed mid-debate; they just land at reduced impact.
func (s State) CanPreach() bool {
	return s == StateActive || s == StateInDebate
}

// NeedsOnboarding reports whether the agent still has entry or staking
// steps to complete.
func (s State) NeedsOnboarding() bool {
	return s == StateUninitialized || s == StateEntered
}

// NeedsConversion reports whether conviction has fallen below the
// agent's threshold without a converting belief applied yet.
func (s State) NeedsConversion() bool {
	return s == StateConverting
}
