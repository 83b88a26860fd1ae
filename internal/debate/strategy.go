package debate

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/agora-arena/agora/internal/domain"
	"go.uber.org/zap"
)

const (
	// weightWeakness boosts the strategy the opponent is weakest against.
	weightWeakness = 1.5
	// weightNatural boosts the agent's own natural style.
	weightNatural = 1.2
	// repetitionDecay is applied once per use of a strategy among the
	// agent's last three turns.
	repetitionDecay = 0.6

	// heuristicShare of selections sample locally by weight; the rest
	// are delegated to the generator, constrained to the top five.
	heuristicShare = 0.7
	delegatedTopN  = 5
)

// StrategySelector chooses a persuasion approach per turn, weighted by
// the opponent's known weakness and discounting recent repetition.
type StrategySelector struct {
	profiles domain.ProfileDirectory
	gen      domain.Generator
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewStrategySelector(profiles domain.ProfileDirectory, gen domain.Generator, rng *rand.Rand, logger *zap.Logger) *StrategySelector {
	return &StrategySelector{profiles: profiles, gen: gen, rng: rng, logger: logger}
}

// SelectParams describe one selection.
type SelectParams struct {
	AgentName    string
	OpponentName string
	Phase        domain.Phase
	// Previous holds the strategies of the agent's own prior turns,
	// oldest first.
	Previous []domain.Strategy
}

// weights computes the per-strategy weight table.
func (s *StrategySelector) weights(p SelectParams) map[domain.Strategy]float64 {
	var natural, weakness domain.Strategy
	if prof, ok := s.profiles.Profile(p.AgentName); ok {
		natural = prof.NaturalStrategy
	}
	if prof, ok := s.profiles.Profile(p.OpponentName); ok {
		weakness = prof.PersuasionWeakness
	}

	recent := p.Previous
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	out := make(map[domain.Strategy]float64, len(domain.Strategies))
	for _, strat := range domain.Strategies {
		w := 1.0
		if strat == weakness {
			w *= weightWeakness
		}
		if strat == natural {
			w *= weightNatural
		}
		uses := 0
		for _, r := range recent {
			if r == strat {
				uses++
			}
		}
		w *= math.Pow(repetitionDecay, float64(uses))
		out[strat] = w
	}
	return out
}

// Select picks a strategy. It never fails: delegation errors fall back
// to the highest-weighted candidate.
func (s *StrategySelector) Select(ctx context.Context, p SelectParams) domain.Strategy {
	weights := s.weights(p)

	if s.rng.Float64() < heuristicShare {
		return sampleByWeight(weights, s.rng)
	}

	top := topStrategies(weights, delegatedTopN)
	picked, err := s.delegate(ctx, p, top)
	if err != nil {
		s.logger.Debug("strategy delegation failed, using top weighted",
			zap.String("agent", p.AgentName), zap.Error(err))
		return top[0]
	}
	return picked
}

func (s *StrategySelector) delegate(ctx context.Context, p SelectParams, top []domain.Strategy) (domain.Strategy, error) {
	names := make([]string, len(top))
	for i, t := range top {
		names[i] = string(t)
	}
	prompt := "You are " + p.AgentName + " debating " + p.OpponentName + ".\n" +
		"Phase: " + string(p.Phase) + "\n" +
		"Choose strategy from: " + strings.Join(names, ", ") + "\n" +
		"Respond with ONLY the strategy name."

	resp, err := s.gen.Generate(ctx, prompt, domain.GenerateOpts{MaxTokens: 50, Temperature: 0.3})
	if err != nil {
		return "", err
	}

	cleaned := domain.Strategy(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == '_' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return -1
	}, resp))

	for _, t := range top {
		if t == cleaned {
			return t, nil
		}
	}
	// Not one of the offered five; fall back to the best candidate.
	return top[0], nil
}

func sampleByWeight(weights map[domain.Strategy]float64, rng *rand.Rand) domain.Strategy {
	total := 0.0
	for _, strat := range domain.Strategies {
		total += weights[strat]
	}

	r := rng.Float64() * total
	for _, strat := range domain.Strategies {
		r -= weights[strat]
		if r <= 0 {
			return strat
		}
	}
	return domain.Strategies[0]
}

// topStrategies returns the n highest-weighted strategies, best first.
// Ties break in canonical strategy order to keep selection stable.
func topStrategies(weights map[domain.Strategy]float64, n int) []domain.Strategy {
	sorted := make([]domain.Strategy, len(domain.Strategies))
	copy(sorted, domain.Strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weights[sorted[i]] > weights[sorted[j]]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
