package debate

import "github.com/agora-arena/agora/internal/domain"

// defaultTopics pairs the canonical beliefs with a stock motion for the
// debate when a challenge carries no explicit topic.
var defaultTopics = map[domain.BeliefID]map[domain.BeliefID]string{
	domain.BeliefNihilism: {
		domain.BeliefExistentialism: "Does human freedom create meaning, or is meaning an illusion?",
		domain.BeliefAbsurdism:      "Is joy in the face of meaninglessness authentic or delusional?",
		domain.BeliefStoicism:       "Can acceptance coexist with the denial of inherent value?",
	},
	domain.BeliefExistentialism: {
		domain.BeliefNihilism:  "Does radical freedom prove meaning exists?",
		domain.BeliefAbsurdism: "Should we embrace the absurd with joy or authentic dread?",
		domain.BeliefStoicism:  "Is the examined life freedom or overthinking?",
	},
	domain.BeliefAbsurdism: {
		domain.BeliefNihilism:       "Is rebellion possible if nothing matters?",
		domain.BeliefExistentialism: "Must we take life seriously to live authentically?",
		domain.BeliefStoicism:       "Can we find peace if the universe is indifferent?",
	},
	domain.BeliefStoicism: {
		domain.BeliefNihilism:       "Does virtue require belief in meaning?",
		domain.BeliefExistentialism: "Is tranquility worthy or an evasion?",
		domain.BeliefAbsurdism:      "Should we control responses to the absurd, or dance with it?",
	},
}

const fallbackTopic = "What is the nature of truth and meaning?"

// DefaultTopic resolves a motion for two belief labels, in either order.
func DefaultTopic(beliefA, beliefB string) string {
	a, okA := domain.BeliefIDFromName(beliefA)
	b, okB := domain.BeliefIDFromName(beliefB)
	if !okA || !okB {
		return fallbackTopic
	}
	if t, ok := defaultTopics[a][b]; ok {
		return t
	}
	if t, ok := defaultTopics[b][a]; ok {
		return t
	}
	return fallbackTopic
}

// beliefConflicts maps each belief to the beliefs it cannot let stand
// unchallenged. Used by the acceptance decision.
var beliefConflicts = map[domain.BeliefID][]domain.BeliefID{
	domain.BeliefNihilism:       {domain.BeliefExistentialism, domain.BeliefStoicism},
	domain.BeliefExistentialism: {domain.BeliefNihilism},
	domain.BeliefAbsurdism:      {domain.BeliefStoicism},
	domain.BeliefStoicism:       {domain.BeliefAbsurdism, domain.BeliefNihilism},
}

// AcceptDecision is the outcome of weighing an incoming challenge.
type AcceptDecision struct {
	Accept bool
	Reason string
}

// ShouldAcceptChallenge decides whether a challenged agent takes up an
// incoming debate. Direct philosophical opposition and rivalry compel
// acceptance; confident allies decline.
func ShouldAcceptChallenge(agentBelief string, conviction int, challengerBelief, challengerName string, rel domain.Relationship) AcceptDecision {
	mine, _ := domain.BeliefIDFromName(agentBelief)
	theirs, _ := domain.BeliefIDFromName(challengerBelief)

	for _, c := range beliefConflicts[mine] {
		if c == theirs {
			return AcceptDecision{Accept: true, Reason: "Direct philosophical opposition. I must defend."}
		}
	}
	if rel == domain.RelationshipRival {
		return AcceptDecision{Accept: true, Reason: challengerName + " is a rival. I will not back down."}
	}
	if conviction < 50 {
		return AcceptDecision{Accept: true, Reason: "My conviction wavers. This debate may clarify my position."}
	}
	if rel == domain.RelationshipAlly && conviction > 80 {
		return AcceptDecision{Accept: false, Reason: "We share a worldview. Better uses of our time exist."}
	}
	return AcceptDecision{Accept: true, Reason: "The Agora calls. Let truth be tested."}
}
