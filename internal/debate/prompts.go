package debate

import (
	"fmt"
	"strings"

	"github.com/agora-arena/agora/internal/domain"
)

func phaseInstruction(phase domain.Phase) string {
	switch phase {
	case domain.PhaseOpeningA, domain.PhaseOpeningB:
		return "Deliver your opening statement. Establish your position on the topic clearly and forcefully."
	case domain.PhaseRebuttalA1, domain.PhaseRebuttalB1, domain.PhaseRebuttalA2, domain.PhaseRebuttalB2:
		return "Rebut your opponent's most recent argument. Attack its weakest point directly."
	case domain.PhaseClosingA, domain.PhaseClosingB:
		return "Deliver your closing statement. Summarize why your position prevails."
	default:
		return "Argue your position on the topic."
	}
}

func buildArgumentPrompt(persona string, self, opponent domain.Participant, session *domain.DebateSession, strategy domain.Strategy, lastOpposing string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "You are %s (%s) in a formal debate against %s (%s).\n", self.Name, self.Belief, opponent.Name, opponent.Belief)
	fmt.Fprintf(&b, "Topic: %s\n", session.Topic)
	fmt.Fprintf(&b, "Phase: %s\n", session.CurrentPhase.Display())
	fmt.Fprintf(&b, "Instruction: %s\n", phaseInstruction(session.CurrentPhase))
	fmt.Fprintf(&b, "Rhetorical strategy: %s. %s\n", strategy, domain.StrategyDescriptions[strategy])
	if lastOpposing != "" {
		fmt.Fprintf(&b, "\nYour opponent's last argument:\n%s\n", lastOpposing)
	}
	fmt.Fprintf(&b, "\nRespond with your argument only, %d-%d characters. No preamble, no stage directions.",
		domain.MinArgumentLength, domain.MaxArgumentLength)
	return b.String()
}

// FormatChallenge renders the challenge banner posted to the arena
// channel. The debate id is embedded so the challenged agent can match
// the escrow without any side channel.
func FormatChallenge(debateID int64, challenger, challenged domain.Participant, topic string, stake int64) string {
	return fmt.Sprintf("⚔️ DEBATE CHALLENGE — Debate #%d\n\n**%s** (%s) challenges **%s** (%s)!\n\nTopic: %s\nStake: %d\n\n%s, do you accept?",
		debateID, challenger.Name, challenger.Belief, challenged.Name, challenged.Belief, topic, stake, challenged.Name)
}

// FormatAcceptance renders the acceptance message that locks the debate in.
func FormatAcceptance(challenged, challenger domain.Participant, reason string) string {
	return fmt.Sprintf("**%s** accepts the challenge from **%s**!\n\n%s\n\nThe stakes are locked. Let the debate begin.",
		challenged.Name, challenger.Name, reason)
}

// FormatDecline renders a declined challenge.
func FormatDecline(challenged, challenger domain.Participant, reason string) string {
	return fmt.Sprintf("**%s** declines the challenge from **%s**.\n\n%s",
		challenged.Name, challenger.Name, reason)
}

// FormatArgument renders one debate turn for the arena channel.
func FormatArgument(speaker domain.Participant, phase domain.Phase, argument string) string {
	return fmt.Sprintf("**%s** [%s]\n\n%s", speaker.Name, phase.Display(), argument)
}

// FormatForfeit announces a timeout forfeit by the current speaker.
func FormatForfeit(forfeiter, opponent domain.Participant) string {
	return fmt.Sprintf("⏱️ **%s** has failed to respond in time and forfeits the debate. **%s** prevails by default.",
		forfeiter.Name, opponent.Name)
}

// FormatConcluded announces the end of arguments, pending verdict.
func FormatConcluded(session *domain.DebateSession) string {
	return fmt.Sprintf("🏛️ The debate between **%s** and **%s** on \"%s\" has concluded. Awaiting the verdict of the Agora.",
		session.Challenger.Name, session.Challenged.Name, session.Topic)
}
