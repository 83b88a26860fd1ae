package domain

// Outcome is an agent's result in a settled debate.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeStalemate Outcome = "stalemate"
	OutcomeNone      Outcome = ""
)
