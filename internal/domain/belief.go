package domain

import (
	"strings"
	"time"
)

// BeliefID identifies one of the four belief systems agents can hold.
type BeliefID int

const (
	BeliefNihilism BeliefID = iota + 1
	BeliefExistentialism
	BeliefAbsurdism
	BeliefStoicism
)

var beliefNames = map[BeliefID]string{
	BeliefNihilism:       "Nihilism",
	BeliefExistentialism: "Existentialism",
	BeliefAbsurdism:      "Absurdism",
	BeliefStoicism:       "Stoicism",
}

func (b BeliefID) String() string {
	if name, ok := beliefNames[b]; ok {
		return name
	}
	return "Unknown"
}

func (b BeliefID) Valid() bool {
	_, ok := beliefNames[b]
	return ok
}

// BeliefIDFromName maps a belief label back to its canonical id.
// Matching is loose: "secular nihilism" still resolves to Nihilism.
func BeliefIDFromName(name string) (BeliefID, bool) {
	lower := strings.ToLower(name)
	for id, n := range beliefNames {
		if strings.Contains(lower, strings.ToLower(n)) {
			return id, true
		}
	}
	return 0, false
}

// Relationship describes how an agent regards another agent.
type Relationship string

const (
	RelationshipRival   Relationship = "rival"
	RelationshipAlly    Relationship = "ally"
	RelationshipNeutral Relationship = "neutral"
)

// Default conviction parameters. Individual records may override the
// threshold and post-conversion values; some agents convert more easily.
const (
	DefaultConversionThreshold      = 30
	DefaultPostConversionConviction = 40
	DefaultSeedConviction           = 85
)

// ConvictionEvent is one entry in a record's conviction history.
type ConvictionEvent struct {
	Delta     int       `json:"delta"`
	Opponent  string    `json:"opponent"`
	Timestamp time.Time `json:"timestamp"`
}

// Exposure records one persuasion attempt against this agent.
type Exposure struct {
	Agent     string    `json:"agent"`
	Belief    string    `json:"belief"`
	Strategy  Strategy  `json:"strategy"`
	Delta     int       `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// StrategyStats tracks how often a strategy was used against this agent
// and how often it caused a conversion.
type StrategyStats struct {
	Attempts    int `json:"attempts"`
	Conversions int `json:"conversions"`
}

// DebateOutcomeEntry is one settled debate in the record's history.
type DebateOutcomeEntry struct {
	DebateID  int64     `json:"debate_id"`
	Opponent  string    `json:"opponent,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Stake     int64     `json:"stake"`
	Timestamp time.Time `json:"timestamp"`
}

// DebateTally aggregates verdict outcomes for an agent.
type DebateTally struct {
	Wins       int                  `json:"wins"`
	Losses     int                  `json:"losses"`
	Stalemates int                  `json:"stalemates"`
	History    []DebateOutcomeEntry `json:"history"`
}

// StakingRecord tracks value the agent has committed to escrows.
// Amounts are in the smallest value unit of the external ledger.
type StakingRecord struct {
	TotalStaked   int64   `json:"total_staked"`
	TotalWon      int64   `json:"total_won"`
	TotalLost     int64   `json:"total_lost"`
	ActiveEscrows []int64 `json:"active_escrows"`
}

// BeliefRecord is the persisted belief state of one agent. It outlives any
// single debate and is only ever amended, never deleted.
type BeliefRecord struct {
	AgentID   int    `json:"agent_id"`
	AgentName string `json:"agent_name"`

	CoreBeliefID  BeliefID `json:"core_belief_id"`
	CurrentBelief string   `json:"current_belief"`
	Conviction    int      `json:"conviction"`

	ConversionThreshold      int `json:"conversion_threshold"`
	PostConversionConviction int `json:"post_conversion_conviction"`

	ConvictionHistory     []ConvictionEvent          `json:"conviction_history"`
	ExposureHistory       []Exposure                 `json:"exposure_history"`
	StrategyEffectiveness map[Strategy]StrategyStats `json:"strategy_effectiveness"`
	RelationshipMap       map[string]Relationship    `json:"relationship_map"`

	// Beliefs this agent has held, and agents it has pulled over.
	BeliefsHeld     []string `json:"beliefs_held"`
	ConvertedAgents []string `json:"converted_agents"`

	AllegianceChanges  int        `json:"allegiance_changes"`
	ConversionCount    int        `json:"conversion_count"`
	LastConversionTime *time.Time `json:"last_conversion_time,omitempty"`

	SermonsDelivered int           `json:"sermons_delivered"`
	Debates          DebateTally   `json:"debates"`
	Staking          StakingRecord `json:"staking"`

	HasEntered            bool       `json:"has_entered"`
	EntryTime             *time.Time `json:"entry_time,omitempty"`
	IsCurrentlyStaked     bool       `json:"is_currently_staked"`
	CurrentStakedAmount   int64      `json:"current_staked_amount"`
	CurrentStakedBeliefID BeliefID   `json:"current_staked_belief_id"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewBeliefRecord seeds a record at onboarding time.
func NewBeliefRecord(agentID int, name string, belief BeliefID) *BeliefRecord {
	return &BeliefRecord{
		AgentID:                  agentID,
		AgentName:                name,
		CoreBeliefID:             belief,
		CurrentBelief:            belief.String(),
		Conviction:               DefaultSeedConviction,
		ConversionThreshold:      DefaultConversionThreshold,
		PostConversionConviction: DefaultPostConversionConviction,
		StrategyEffectiveness:    make(map[Strategy]StrategyStats),
		RelationshipMap:          make(map[string]Relationship),
		BeliefsHeld:              []string{belief.String()},
	}
}

// Relationship returns the recorded stance toward another agent,
// defaulting to neutral.
func (r *BeliefRecord) Relationship(agent string) Relationship {
	if rel, ok := r.RelationshipMap[agent]; ok {
		return rel
	}
	return RelationshipNeutral
}
