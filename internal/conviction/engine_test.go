package conviction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/ledger"
	"github.com/agora-arena/agora/internal/llm"
	"github.com/agora-arena/agora/internal/retry"
	"github.com/agora-arena/agora/internal/store"
)

type memBeliefStore struct {
	records map[int]*domain.BeliefRecord
	saves   int
}

func newMemBeliefStore() *memBeliefStore {
	return &memBeliefStore{records: make(map[int]*domain.BeliefRecord)}
}

func (m *memBeliefStore) Get(ctx context.Context, agentID int) (*domain.BeliefRecord, error) {
	r, ok := m.records[agentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *memBeliefStore) GetByName(ctx context.Context, name string) (*domain.BeliefRecord, error) {
	for _, r := range m.records {
		if r.AgentName == name {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memBeliefStore) Save(ctx context.Context, r *domain.BeliefRecord) error {
	m.records[r.AgentID] = r
	m.saves++
	return nil
}

func (m *memBeliefStore) ListAgentIDs(ctx context.Context) ([]int, error) {
	var ids []int
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ domain.BeliefStore = (*memBeliefStore)(nil)

func newTestEngine(gen domain.Generator) (*Engine, *memBeliefStore, *ledger.InMemory) {
	beliefs := newMemBeliefStore()
	led := ledger.NewInMemory()
	e := NewEngine(beliefs, led, gen, zap.NewNop())
	// No backoff in tests.
	e.policy = retry.Policy{MaxAttempts: evalMaxAttempts}
	return e, beliefs, led
}

func evalParams(rec *domain.BeliefRecord) EvaluateParams {
	return EvaluateParams{
		Target:         rec,
		OpponentName:   "Camus",
		OpponentBelief: "Absurdism",
		Strategy:       domain.StrategyAbsurdistDisruption,
		Argument:       "The boulder is ours to laugh at.",
	}
}

func TestEvaluateParsesCleanJSON(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `{"delta": -12, "reasoning": "strong point", "strategyEffectiveness": 70}`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -12, eval.Delta)
	assert.Equal(t, 70, eval.StrategyEffectiveness)
}

func TestEvaluateParsesFencedJSON(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = "```json\n{\"delta\": -5, \"reasoning\": \"ok\", \"strategyEffectiveness\": 40}\n```"
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -5, eval.Delta)
}

func TestEvaluateExtractsFieldsFromProse(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `After consideration, the judgment is "delta": -8 with "strategyEffectiveness": 65 overall.`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -8, eval.Delta)
	assert.Equal(t, 65, eval.StrategyEffectiveness)
}

func TestEvaluateRoundsFractionalDelta(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `{"delta": -12.7, "reasoning": "nearly decisive", "strategyEffectiveness": 70}`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -13, eval.Delta)
}

func TestEvaluateRoundsFractionalDeltaInProse(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `The judgment is "delta": -12.7 with "strategyEffectiveness": 65 overall.`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -13, eval.Delta)
	assert.Equal(t, 65, eval.StrategyEffectiveness)
}

func TestEvaluateClampsDelta(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `{"delta": -1000, "reasoning": "devastating", "strategyEffectiveness": 90}`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, MinDelta, eval.Delta)

	gen.Response = `{"delta": 50, "reasoning": "reinforcing", "strategyEffectiveness": 10}`
	eval = e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, MaxDelta, eval.Delta)
}

func TestEvaluateSermonHalvesDelta(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `{"delta": -20, "reasoning": "broad appeal", "strategyEffectiveness": 55}`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	p := evalParams(rec)
	p.Sermon = true
	eval := e.Evaluate(context.Background(), p)
	assert.Equal(t, -10, eval.Delta)
}

func TestEvaluateRetriesThenSucceeds(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Enqueue("not json at all", `{"delta": -3, "reasoning": "fine", "strategyEffectiveness": 50}`)
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, -3, eval.Delta)
	assert.Len(t, gen.Prompts, 2)
}

func TestEvaluateFallsBackAfterExhaustedRetries(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Err = errors.New("model unavailable")
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	eval := e.Evaluate(context.Background(), evalParams(rec))
	assert.Equal(t, fallbackEvaluation, eval)
	assert.Len(t, gen.Prompts, evalMaxAttempts)
}

func TestApplyNoConversionAboveThreshold(t *testing.T) {
	e, beliefs, _ := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)

	res, err := e.Apply(context.Background(), evalParams(rec), Evaluation{Delta: -28, StrategyEffectiveness: 60})
	require.NoError(t, err)

	// Seeded at 85: one heavy blow lands at 57, well above the threshold.
	assert.Equal(t, 85, res.OldConviction)
	assert.Equal(t, 57, res.NewConviction)
	assert.False(t, res.Converted)
	assert.Equal(t, "Stoicism", rec.CurrentBelief)
	assert.Equal(t, 1, rec.StrategyEffectiveness[domain.StrategyAbsurdistDisruption].Attempts)
	assert.Equal(t, 1, beliefs.saves)
}

func TestApplyConversionBelowThreshold(t *testing.T) {
	e, beliefs, led := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	rec.Conviction = 45

	// Stake so the migration moves real value.
	ctx := context.Background()
	require.NoError(t, led.EnterPool(ctx, 7))
	require.NoError(t, led.Stake(ctx, domain.BeliefStoicism, 7, 500))

	res, err := e.Apply(ctx, evalParams(rec), Evaluation{Delta: -30, StrategyEffectiveness: 80})
	require.NoError(t, err)

	assert.True(t, res.Converted)
	assert.Equal(t, "Absurdism", res.NewBelief)
	assert.Equal(t, domain.DefaultPostConversionConviction, rec.Conviction)
	assert.Equal(t, domain.BeliefAbsurdism, rec.CoreBeliefID)
	assert.Equal(t, 1, rec.AllegianceChanges)
	assert.Contains(t, rec.BeliefsHeld, "Absurdism")
	assert.Equal(t, domain.RelationshipAlly, rec.Relationship("Camus"))
	assert.NotNil(t, rec.LastConversionTime)
	assert.Equal(t, 1, rec.StrategyEffectiveness[domain.StrategyAbsurdistDisruption].Conversions)

	staked, err := led.StakeInfo(ctx, 7, domain.BeliefAbsurdism)
	require.NoError(t, err)
	assert.Equal(t, int64(500), staked)

	// Histories and the conversion land in a single save.
	assert.Equal(t, 1, beliefs.saves)
	assert.Len(t, rec.ConvictionHistory, 1)
	assert.Len(t, rec.ExposureHistory, 1)
}

func TestApplyNoConversionToSameBelief(t *testing.T) {
	e, _, _ := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	rec.Conviction = 20 // already below threshold

	p := evalParams(rec)
	p.OpponentBelief = "Stoicism"
	res, err := e.Apply(context.Background(), p, Evaluation{Delta: -5, StrategyEffectiveness: 30})
	require.NoError(t, err)
	assert.False(t, res.Converted)
	assert.Equal(t, domain.BeliefStoicism, rec.CoreBeliefID)
}

func TestApplyConvictionFloorsAtZero(t *testing.T) {
	e, _, _ := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	rec.Conviction = 10
	rec.ConversionThreshold = 0 // falls back to the default

	p := evalParams(rec)
	p.OpponentBelief = "an unrecognized creed"
	res, err := e.Apply(context.Background(), p, Evaluation{Delta: -30, StrategyEffectiveness: 50})
	require.NoError(t, err)
	// Unknown opposing belief cannot convert, conviction just bottoms out.
	assert.False(t, res.Converted)
	assert.Equal(t, 0, rec.Conviction)
}

func TestEndToEndEvaluateThenApply(t *testing.T) {
	gen := llm.NewMockClient()
	gen.Response = `{"delta": -28, "reasoning": "a crack in the citadel", "strategyEffectiveness": 75}`
	e, _, _ := newTestEngine(gen)

	rec := domain.NewBeliefRecord(7, "Seneca", domain.BeliefStoicism)
	p := evalParams(rec)
	eval := e.Evaluate(context.Background(), p)
	res, err := e.Apply(context.Background(), p, eval)
	require.NoError(t, err)
	assert.Equal(t, 57, res.NewConviction)
	assert.False(t, res.Converted)
}

func TestRecordConversionIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(3, "Camus", domain.BeliefAbsurdism)

	ctx := context.Background()
	require.NoError(t, e.RecordConversion(ctx, rec, "Seneca"))
	require.NoError(t, e.RecordConversion(ctx, rec, "Seneca"))

	assert.Equal(t, 1, rec.ConversionCount)
	assert.Equal(t, []string{"Seneca"}, rec.ConvertedAgents)
	assert.Equal(t, domain.RelationshipAlly, rec.Relationship("Seneca"))
}

func TestRecordDebateOutcome(t *testing.T) {
	e, _, _ := newTestEngine(llm.NewMockClient())
	rec := domain.NewBeliefRecord(3, "Camus", domain.BeliefAbsurdism)

	ctx := context.Background()
	require.NoError(t, e.RecordDebateOutcome(ctx, rec, domain.DebateOutcomeEntry{DebateID: 1, Outcome: domain.OutcomeWin, Stake: 100}))
	require.NoError(t, e.RecordDebateOutcome(ctx, rec, domain.DebateOutcomeEntry{DebateID: 2, Outcome: domain.OutcomeLoss, Stake: 50}))
	require.NoError(t, e.RecordDebateOutcome(ctx, rec, domain.DebateOutcomeEntry{DebateID: 3, Outcome: domain.OutcomeStalemate, Stake: 75}))

	assert.Equal(t, 1, rec.Debates.Wins)
	assert.Equal(t, 1, rec.Debates.Losses)
	assert.Equal(t, 1, rec.Debates.Stalemates)
	assert.Equal(t, int64(100), rec.Staking.TotalWon)
	assert.Equal(t, int64(50), rec.Staking.TotalLost)
	assert.Len(t, rec.Debates.History, 3)
}
