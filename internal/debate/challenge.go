package debate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agora-arena/agora/internal/domain"
)

var (
	challengePairRe  = regexp.MustCompile(`\*\*(.+?)\*\* \((.+?)\) challenges \*\*(.+?)\*\* \((.+?)\)!`)
	challengeIDRe    = regexp.MustCompile(`Debate #(\d+)`)
	challengeTopicRe = regexp.MustCompile(`Topic: (.+)`)
	challengeStakeRe = regexp.MustCompile(`Stake: (\d+)`)
)

// IncomingChallenge is a challenge banner parsed off the arena channel.
// The challenger's agent id is unknown at this point; only the banner's
// name and belief are available until the registry resolves them.
type IncomingChallenge struct {
	DebateID         int64
	ChallengerName   string
	ChallengerBelief string
	Topic            string
	Stake            int64
}

// DetectChallenge scans channel messages, newest first, for a challenge
// aimed at the named agent. Returns the most recent match.
func DetectChallenge(msgs []domain.Message, selfName string) (IncomingChallenge, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		c, ok := parseChallenge(msgs[i].Content)
		if !ok {
			continue
		}
		if !strings.EqualFold(c.challengedName, selfName) {
			continue
		}
		return c.IncomingChallenge, true
	}
	return IncomingChallenge{}, false
}

type parsedChallenge struct {
	IncomingChallenge
	challengedName string
}

func parseChallenge(text string) (parsedChallenge, bool) {
	if !strings.Contains(text, "DEBATE CHALLENGE") {
		return parsedChallenge{}, false
	}
	pair := challengePairRe.FindStringSubmatch(text)
	id := challengeIDRe.FindStringSubmatch(text)
	if pair == nil || id == nil {
		return parsedChallenge{}, false
	}

	debateID, err := strconv.ParseInt(id[1], 10, 64)
	if err != nil {
		return parsedChallenge{}, false
	}

	c := parsedChallenge{
		IncomingChallenge: IncomingChallenge{
			DebateID:         debateID,
			ChallengerName:   pair[1],
			ChallengerBelief: pair[2],
		},
		challengedName: pair[3],
	}
	if m := challengeTopicRe.FindStringSubmatch(text); m != nil {
		c.Topic = strings.TrimSpace(m[1])
	}
	if m := challengeStakeRe.FindStringSubmatch(text); m != nil {
		c.Stake, _ = strconv.ParseInt(m[1], 10, 64)
	}
	return c, true
}

var (
	acceptanceRe = regexp.MustCompile(`\*\*(.+?)\*\* accepts the challenge from \*\*(.+?)\*\*`)
	declineRe    = regexp.MustCompile(`\*\*(.+?)\*\* declines the challenge from \*\*(.+?)\*\*`)
	argumentRe   = regexp.MustCompile(`(?s)^\*\*(.+?)\*\* \[(.+?)\]\n\n(.+)$`)
)

// ParseAcceptance reads an acceptance post back off the channel.
func ParseAcceptance(text string) (accepter, challenger string, ok bool) {
	m := acceptanceRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseDecline reads a decline post back off the channel.
func ParseDecline(text string) (decliner, challenger string, ok bool) {
	m := declineRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseArgument reads a posted debate turn back off the channel.
func ParseArgument(text string) (speaker, phaseLabel, content string, ok bool) {
	m := argumentRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], strings.TrimSpace(m[3]), true
}
