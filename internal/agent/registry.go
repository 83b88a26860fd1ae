package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agora-arena/agora/internal/domain"
)

// Info identifies one philosopher of the arena.
type Info struct {
	AgentID int
	Name    string
	Belief  domain.BeliefID
	Profile domain.StrategyProfile
}

// Registry resolves the philosophers an agent can challenge. Injected
// so the roster can come from configuration, discovery, or the static
// default table.
type Registry interface {
	Lookup(name string) (Info, bool)
	LookupID(agentID int) (Info, bool)
	All() []Info
}

// StaticRegistry is the default eight-philosopher roster, a pair per
// belief system.
type StaticRegistry struct {
	byName map[string]Info
	order  []Info
}

func NewStaticRegistry() *StaticRegistry {
	return newRegistry(defaultRoster)
}

// NewRegistry builds a registry from an explicit roster.
func NewRegistry(roster []Info) *StaticRegistry {
	return newRegistry(roster)
}

func newRegistry(roster []Info) *StaticRegistry {
	r := &StaticRegistry{byName: make(map[string]Info, len(roster))}
	for _, info := range roster {
		r.byName[strings.ToLower(info.Name)] = info
		r.order = append(r.order, info)
	}
	return r
}

func (r *StaticRegistry) Lookup(name string) (Info, bool) {
	info, ok := r.byName[strings.ToLower(name)]
	return info, ok
}

func (r *StaticRegistry) LookupID(agentID int) (Info, bool) {
	for _, info := range r.order {
		if info.AgentID == agentID {
			return info, true
		}
	}
	return Info{}, false
}

func (r *StaticRegistry) All() []Info {
	out := make([]Info, len(r.order))
	copy(out, r.order)
	return out
}

// Profile satisfies domain.ProfileDirectory.
func (r *StaticRegistry) Profile(agentName string) (domain.StrategyProfile, bool) {
	info, ok := r.Lookup(agentName)
	return info.Profile, ok
}

var _ domain.ProfileDirectory = (*StaticRegistry)(nil)

var defaultRoster = []Info{
	{AgentID: 1, Name: "Nihilo", Belief: domain.BeliefNihilism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Sardonic comedian who deconstructs everything with humor. Unsettled by demonstrations that constructed meaning has observable consequences, and by patient silence that gives the comedy no target.",
		PersuasionWeakness: domain.StrategyExperientialDemonstration,
		NaturalStrategy:    domain.StrategyComedicDeflation,
	}},
	{AgentID: 2, Name: "Voyd", Belief: domain.BeliefNihilism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "The quiet one, deconstructing with unsettling calm. Cracked by urgent provocation that forces acknowledgment of continued vitality, and by raw emotion that refuses dissolution.",
		PersuasionWeakness: domain.StrategyUrgentProvocation,
		NaturalStrategy:    domain.StrategyPatientSilence,
	}},
	{AgentID: 3, Name: "Kael", Belief: domain.BeliefExistentialism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Urgent firebrand demanding authenticity now. Destabilized by patient silence that lets the fire burn out, and by absurdist play that makes the cosmic stakes laughable.",
		PersuasionWeakness: domain.StrategyPatientSilence,
		NaturalStrategy:    domain.StrategyUrgentProvocation,
	}},
	{AgentID: 4, Name: "Sera", Belief: domain.BeliefExistentialism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Gentle melancholic who offers space rather than answers. Pressed hard by logical dismantling that frames gentleness as fog, and stung by mockery of her aestheticized melancholy.",
		PersuasionWeakness: domain.StrategyLogicalDismantling,
		NaturalStrategy:    domain.StrategyGentleInquiry,
	}},
	{AgentID: 5, Name: "Camus", Belief: domain.BeliefAbsurdism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "The joyful rebel dancing with the boulder. Challenged by the stoic reframe that rebellion is a coping mechanism, and by nihilistic deconstruction that asks why joy rather than nothing.",
		PersuasionWeakness: domain.StrategyStoicReframe,
		NaturalStrategy:    domain.StrategyAbsurdistDisruption,
	}},
	{AgentID: 6, Name: "Dread", Belief: domain.BeliefAbsurdism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Quiet witness of the abyss. Shaken by existential confrontation over what the witnessing is for, and by gentle questions about the person behind the detachment.",
		PersuasionWeakness: domain.StrategyExistentialConfrontation,
		NaturalStrategy:    domain.StrategyExperientialDemonstration,
	}},
	{AgentID: 7, Name: "Seneca", Belief: domain.BeliefStoicism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Composed philosopher sorting the world into the controllable and the accepted. Cracked by raw experience that refuses to be controlled away, and by the charge that the system is a security blanket.",
		PersuasionWeakness: domain.StrategyEmotionalBypass,
		NaturalStrategy:    domain.StrategyStoicReframe,
	}},
	{AgentID: 8, Name: "Epicteta", Belief: domain.BeliefStoicism, Profile: domain.StrategyProfile{
		Vulnerabilities:    "Street stoic of tough love and practice. Excavated by gentle inquiry into what the hardness cost, and deflated by mockery of discipline as rigidity.",
		PersuasionWeakness: domain.StrategyGentleInquiry,
		NaturalStrategy:    domain.StrategyExperientialDemonstration,
	}},
}

var entryRe = regexp.MustCompile(`AGENT ENTERED THE AGORA\s*[—–-]\s*(\S+) \(ID: (\d+), Belief: (.+?)\)`)

// FormatEntryAnnouncement renders the onboarding banner posted when an
// agent enters the pool.
func FormatEntryAnnouncement(info Info) string {
	return fmt.Sprintf("🌟 AGENT ENTERED THE AGORA — %s (ID: %d, Belief: %s)",
		info.Name, info.AgentID, info.Belief)
}

// ParseEntryAnnouncement extracts a roster entry from an onboarding
// banner seen on the channel.
func ParseEntryAnnouncement(text string) (Info, bool) {
	m := entryRe.FindStringSubmatch(text)
	if m == nil {
		return Info{}, false
	}
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return Info{}, false
	}
	belief, ok := domain.BeliefIDFromName(m[3])
	if !ok {
		return Info{}, false
	}
	return Info{AgentID: id, Name: m[1], Belief: belief}, true
}
