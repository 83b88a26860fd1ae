package domain

// Strategy is a persuasion approach an agent can frame an argument with.
type Strategy string

const (
	StrategyLogicalDismantling        Strategy = "logical_dismantling"
	StrategyEmotionalBypass           Strategy = "emotional_bypass"
	StrategySocialProof               Strategy = "social_proof"
	StrategyExperientialDemonstration Strategy = "experiential_demonstration"
	StrategyAbsurdistDisruption       Strategy = "absurdist_disruption"
	StrategyStoicReframe              Strategy = "stoic_reframe"
	StrategyExistentialConfrontation  Strategy = "existential_confrontation"
	StrategyNihilisticDeconstruction  Strategy = "nihilistic_deconstruction"
	StrategyComedicDeflation          Strategy = "comedic_deflation"
	StrategyPatientSilence            Strategy = "patient_silence"
	StrategyUrgentProvocation         Strategy = "urgent_provocation"
	StrategyGentleInquiry             Strategy = "gentle_inquiry"
)

// Strategies lists every known persuasion strategy.
var Strategies = []Strategy{
	StrategyLogicalDismantling,
	StrategyEmotionalBypass,
	StrategySocialProof,
	StrategyExperientialDemonstration,
	StrategyAbsurdistDisruption,
	StrategyStoicReframe,
	StrategyExistentialConfrontation,
	StrategyNihilisticDeconstruction,
	StrategyComedicDeflation,
	StrategyPatientSilence,
	StrategyUrgentProvocation,
	StrategyGentleInquiry,
}

// StrategyDescriptions gives a one-line framing hint per strategy,
// used when prompting for argument text.
var StrategyDescriptions = map[Strategy]string{
	StrategyLogicalDismantling:        "Expose logical flaws and contradictions.",
	StrategyEmotionalBypass:           "Appeal to experience and feelings.",
	StrategySocialProof:               "Highlight movements toward your position.",
	StrategyExperientialDemonstration: "Show through concrete examples.",
	StrategyAbsurdistDisruption:       "Use humor and irony.",
	StrategyStoicReframe:              "Reframe in terms of control and acceptance.",
	StrategyExistentialConfrontation:  "Force confrontation with existence.",
	StrategyNihilisticDeconstruction:  "Strip away assumed values.",
	StrategyComedicDeflation:          "Use wit to puncture pretension.",
	StrategyPatientSilence:            "Let silence reveal their need.",
	StrategyUrgentProvocation:         "Create urgency, demand confrontation.",
	StrategyGentleInquiry:             "Ask piercing questions.",
}

func (s Strategy) Valid() bool {
	_, ok := StrategyDescriptions[s]
	return ok
}

// StrategyProfile captures what is known about an agent's persuasion
// surface: free-text vulnerability notes, the strategy it is weakest
// against, and the strategy it naturally reaches for.
type StrategyProfile struct {
	Vulnerabilities    string
	PersuasionWeakness Strategy
	NaturalStrategy    Strategy
}

// ProfileDirectory resolves strategy profiles by agent name. Injected so
// core logic never reads a process-wide table.
type ProfileDirectory interface {
	Profile(agentName string) (StrategyProfile, bool)
}
