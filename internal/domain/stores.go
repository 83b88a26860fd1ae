package domain

import (
	"context"
	"time"
)

// BeliefStore persists one BeliefRecord per agent. Records are read and
// written as whole documents; single-document atomicity is the only
// consistency guarantee assumed.
type BeliefStore interface {
	Get(ctx context.Context, agentID int) (*BeliefRecord, error)
	GetByName(ctx context.Context, agentName string) (*BeliefRecord, error)
	Save(ctx context.Context, r *BeliefRecord) error
	ListAgentIDs(ctx context.Context) ([]int, error)
}

// DebateStore persists the active (or most recently concluded) debate
// session for an agent. Archived sessions are renamed, never deleted.
type DebateStore interface {
	GetActive(ctx context.Context, agentID int) (*DebateSession, error)
	Save(ctx context.Context, agentID int, s *DebateSession) error
	Archive(ctx context.Context, agentID int, debateID int64) error
}

// Ledger is the external contract collaborator. All calls may fail and
// settlement is entirely the ledger's responsibility; this core only
// decides what to settle and when.
type Ledger interface {
	EnterPool(ctx context.Context, agentID int) error
	Stake(ctx context.Context, beliefID BeliefID, agentID int, amount int64) error
	CreateEscrow(ctx context.Context, challengerID, challengedID int, amount int64) (int64, error)
	MatchEscrow(ctx context.Context, debateID int64, amount int64) error
	DeclineEscrow(ctx context.Context, debateID int64) error
	SubmitVerdict(ctx context.Context, debateID int64, verdict string) error
	MigrateStake(ctx context.Context, from, to BeliefID, agentID int) error
	HasEntered(ctx context.Context, agentID int) (bool, error)
	StakeInfo(ctx context.Context, agentID int, beliefID BeliefID) (int64, error)
}

// GenerateOpts tune a single language-generation call.
type GenerateOpts struct {
	MaxTokens   int
	Temperature float64
}

// Generator is the language-model collaborator, used for argument text,
// evaluation calls and optional strategy delegation. Implementations
// are chosen by configuration at the process boundary.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOpts) (string, error)
}

// Message is one entry read back from the message channel.
type Message struct {
	Author    string
	Content   string
	Timestamp time.Time
}

// Channel is the message-channel collaborator agents speak through.
type Channel interface {
	Post(ctx context.Context, channelID, text string) error
	RecentMessages(ctx context.Context, channelID string, since time.Time) ([]Message, error)
}
