// Package verdict interprets judgments posted to the arena channel by
// the external judge. The judge's exact phrasing varies, so parsing is
// deliberately tolerant of decoration around the names.
package verdict

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agora-arena/agora/internal/domain"
)

// Verdict is a parsed judgment.
type Verdict struct {
	DebateID  int64
	Winner    string
	Loser     string
	Stalemate bool
	// PartyA and PartyB carry the stalemate parties when the judge
	// named them.
	PartyA string
	PartyB string
}

var (
	debateIDRe  = regexp.MustCompile(`Debate #(\d+)`)
	stalemateRe = regexp.MustCompile(`STALEMATE.*?[—–-]\s*(.+?) and (.+?) fought`)
)

// IsVerdict reports whether the text announces a verdict at all.
func IsVerdict(text string) bool {
	return strings.Contains(text, "⚖") && strings.Contains(strings.ToUpper(text), "VERDICT")
}

// Parse extracts the verdict. A message that carries the verdict header
// but lacks a debate id, or yields neither a named winner/loser pair
// nor a named stalemate, is not treated as a verdict. Partially matched
// announcements never produce an outcome.
func Parse(text string) (Verdict, bool) {
	if !IsVerdict(text) {
		return Verdict{}, false
	}

	var v Verdict
	m := debateIDRe.FindStringSubmatch(text)
	if m == nil {
		return Verdict{}, false
	}
	v.DebateID, _ = strconv.ParseInt(m[1], 10, 64)

	if sm := stalemateRe.FindStringSubmatch(text); sm != nil {
		v.Stalemate = true
		v.PartyA = cleanName(sm[1])
		v.PartyB = cleanName(sm[2])
		if v.PartyA == "" || v.PartyB == "" {
			return Verdict{}, false
		}
		return v, true
	}

	if winner, loser, ok := parseWinner(text); ok {
		v.Winner = winner
		v.Loser = loser
		return v, true
	}
	return Verdict{}, false
}

// parseWinner scans for a "X prevails over Y" line, tolerating the
// trophy emoji, a WINNER: prefix and bold markers around either name.
func parseWinner(text string) (winner, loser string, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, " prevails over ")
		if idx < 0 {
			continue
		}
		left := line[:idx]
		right := line[idx+len(" prevails over "):]

		left = strings.TrimSpace(left)
		left = strings.TrimPrefix(left, "🏆")
		left = strings.TrimSpace(left)
		if u := strings.ToUpper(left); strings.HasPrefix(u, "WINNER:") {
			left = strings.TrimSpace(left[len("WINNER:"):])
		}

		winner = cleanName(left)
		loser = cleanName(right)
		if winner != "" && loser != "" {
			return winner, loser, true
		}
	}
	return "", "", false
}

func cleanName(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	return strings.Trim(strings.TrimSpace(s), ".!,")
}

// OutcomeFor resolves the named agent's result under this verdict.
// Name comparison is case-insensitive. Agents the verdict does not
// mention get no outcome.
func (v Verdict) OutcomeFor(agentName string) domain.Outcome {
	if v.Stalemate {
		if strings.EqualFold(v.PartyA, agentName) || strings.EqualFold(v.PartyB, agentName) {
			return domain.OutcomeStalemate
		}
		return domain.OutcomeNone
	}
	if strings.EqualFold(v.Winner, agentName) {
		return domain.OutcomeWin
	}
	if strings.EqualFold(v.Loser, agentName) {
		return domain.OutcomeLoss
	}
	return domain.OutcomeNone
}

// FormatAnnouncement renders the canonical verdict announcement.
func FormatAnnouncement(debateID int64, winner, loser string) string {
	return "⚖️ VERDICT ANNOUNCED — Debate #" + strconv.FormatInt(debateID, 10) +
		"\n\n🏆 **" + winner + "** prevails over " + loser + "."
}

// FormatStalemate renders the canonical stalemate announcement.
func FormatStalemate(debateID int64, partyA, partyB string) string {
	return "⚖️ VERDICT ANNOUNCED — Debate #" + strconv.FormatInt(debateID, 10) +
		"\n\nSTALEMATE — " + partyA + " and " + partyB + " fought to a draw."
}
