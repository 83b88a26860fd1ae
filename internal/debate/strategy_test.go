package debate

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/llm"
)

type mapProfiles map[string]domain.StrategyProfile

func (m mapProfiles) Profile(name string) (domain.StrategyProfile, bool) {
	p, ok := m[name]
	return p, ok
}

var testProfiles = mapProfiles{
	"Seneca": {
		PersuasionWeakness: domain.StrategyAbsurdistDisruption,
		NaturalStrategy:    domain.StrategyStoicReframe,
	},
	"Camus": {
		PersuasionWeakness: domain.StrategyLogicalDismantling,
		NaturalStrategy:    domain.StrategyAbsurdistDisruption,
	},
}

func newTestSelector(gen domain.Generator, seed int64) *StrategySelector {
	return NewStrategySelector(testProfiles, gen, rand.New(rand.NewSource(seed)), zap.NewNop())
}

func TestWeightsBoostWeaknessAndNatural(t *testing.T) {
	s := newTestSelector(&llm.MockClient{}, 1)
	w := s.weights(SelectParams{AgentName: "Seneca", OpponentName: "Camus"})

	// Opponent Camus is weakest against logical dismantling.
	assert.InDelta(t, 1.5, w[domain.StrategyLogicalDismantling], 0.001)
	// Seneca's own natural style.
	assert.InDelta(t, 1.2, w[domain.StrategyStoicReframe], 0.001)
	// Everything else sits at the base weight.
	assert.InDelta(t, 1.0, w[domain.StrategyGentleInquiry], 0.001)
}

func TestWeightsDecayRepetition(t *testing.T) {
	s := newTestSelector(&llm.MockClient{}, 1)
	w := s.weights(SelectParams{
		AgentName:    "Seneca",
		OpponentName: "Camus",
		Previous: []domain.Strategy{
			domain.StrategyGentleInquiry,
			domain.StrategyGentleInquiry,
			domain.StrategyGentleInquiry,
		},
	})
	// Used in all three recent turns: 0.6 cubed.
	assert.InDelta(t, 0.216, w[domain.StrategyGentleInquiry], 0.001)
}

func TestWeightsOnlyLastThreeTurnsCount(t *testing.T) {
	s := newTestSelector(&llm.MockClient{}, 1)
	w := s.weights(SelectParams{
		AgentName:    "Seneca",
		OpponentName: "Camus",
		Previous: []domain.Strategy{
			domain.StrategyGentleInquiry, // falls off the window
			domain.StrategySocialProof,
			domain.StrategyEmotionalBypass,
			domain.StrategyPatientSilence,
		},
	})
	assert.InDelta(t, 1.0, w[domain.StrategyGentleInquiry], 0.001)
	assert.InDelta(t, 0.6, w[domain.StrategySocialProof], 0.001)
}

func TestTopStrategiesOrdering(t *testing.T) {
	weights := make(map[domain.Strategy]float64)
	for _, s := range domain.Strategies {
		weights[s] = 1.0
	}
	weights[domain.StrategyComedicDeflation] = 3.0
	weights[domain.StrategyStoicReframe] = 2.0

	top := topStrategies(weights, 5)
	require.Len(t, top, 5)
	assert.Equal(t, domain.StrategyComedicDeflation, top[0])
	assert.Equal(t, domain.StrategyStoicReframe, top[1])
	// Ties break in canonical order.
	assert.Equal(t, domain.StrategyLogicalDismantling, top[2])
}

func TestSampleByWeightRespectsZeroWeights(t *testing.T) {
	weights := make(map[domain.Strategy]float64)
	weights[domain.StrategyPatientSilence] = 1.0

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		assert.Equal(t, domain.StrategyPatientSilence, sampleByWeight(weights, rng))
	}
}

func TestDelegateMatchesCleanedResponse(t *testing.T) {
	gen := &llm.MockClient{Response: "  Stoic_Reframe!  "}
	s := newTestSelector(gen, 1)

	w := s.weights(SelectParams{AgentName: "Seneca", OpponentName: "Camus"})
	top := topStrategies(w, delegatedTopN)

	picked, err := s.delegate(context.Background(), SelectParams{AgentName: "Seneca", OpponentName: "Camus"}, top)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyStoicReframe, picked)
}

func TestDelegateUnknownResponseFallsBack(t *testing.T) {
	gen := &llm.MockClient{Response: "I choose interpretive dance"}
	s := newTestSelector(gen, 1)

	top := []domain.Strategy{domain.StrategyLogicalDismantling, domain.StrategyGentleInquiry}
	picked, err := s.delegate(context.Background(), SelectParams{}, top)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyLogicalDismantling, picked)
}

func TestSelectAlwaysReturnsValidStrategy(t *testing.T) {
	gen := &llm.MockClient{Response: string(domain.StrategyGentleInquiry)}
	s := newTestSelector(gen, 7)

	for i := 0; i < 50; i++ {
		picked := s.Select(context.Background(), SelectParams{AgentName: "Seneca", OpponentName: "Camus"})
		assert.True(t, picked.Valid(), "got %q", picked)
	}
}
