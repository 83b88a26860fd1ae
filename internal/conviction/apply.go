package conviction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
)

// ApplyResult reports what one exposure did to the record.
type ApplyResult struct {
	Evaluation    Evaluation
	OldConviction int
	NewConviction int
	Converted     bool
	NewBelief     string
}

// Apply folds an evaluated exposure into the target's belief record and
// persists it with a single save. Conversion fires when conviction
// drops below the record's threshold and the opponent holds a different
// belief. Stake migration is an intent against the ledger; its failure
// is logged, never rolled back.
func (e *Engine) Apply(ctx context.Context, p EvaluateParams, eval Evaluation) (*ApplyResult, error) {
	rec := p.Target
	now := time.Now()

	threshold := rec.ConversionThreshold
	if threshold <= 0 {
		threshold = domain.DefaultConversionThreshold
	}
	postConviction := rec.PostConversionConviction
	if postConviction <= 0 {
		postConviction = domain.DefaultPostConversionConviction
	}

	old := rec.Conviction
	rec.Conviction = clamp(old+eval.Delta, 0, 100)

	rec.ConvictionHistory = append(rec.ConvictionHistory, domain.ConvictionEvent{
		Delta:     eval.Delta,
		Opponent:  p.OpponentName,
		Timestamp: now,
	})
	rec.ExposureHistory = append(rec.ExposureHistory, domain.Exposure{
		Agent:     p.OpponentName,
		Belief:    p.OpponentBelief,
		Strategy:  p.Strategy,
		Delta:     eval.Delta,
		Timestamp: now,
	})

	if rec.StrategyEffectiveness == nil {
		rec.StrategyEffectiveness = make(map[domain.Strategy]domain.StrategyStats)
	}
	stats := rec.StrategyEffectiveness[p.Strategy]
	stats.Attempts++

	res := &ApplyResult{
		Evaluation:    eval,
		OldConviction: old,
		NewConviction: rec.Conviction,
		NewBelief:     rec.CurrentBelief,
	}

	opponentBeliefID, known := domain.BeliefIDFromName(p.OpponentBelief)
	sameBelief := known && opponentBeliefID == rec.CoreBeliefID

	if rec.Conviction < threshold && known && !sameBelief {
		stats.Conversions++
		from := rec.CoreBeliefID

		rec.CoreBeliefID = opponentBeliefID
		rec.CurrentBelief = opponentBeliefID.String()
		rec.Conviction = postConviction
		rec.BeliefsHeld = append(rec.BeliefsHeld, opponentBeliefID.String())
		rec.AllegianceChanges++
		rec.LastConversionTime = &now
		if rec.RelationshipMap == nil {
			rec.RelationshipMap = make(map[string]domain.Relationship)
		}
		rec.RelationshipMap[p.OpponentName] = domain.RelationshipAlly

		res.Converted = true
		res.NewConviction = rec.Conviction
		res.NewBelief = rec.CurrentBelief

		if err := e.ledger.MigrateStake(ctx, from, opponentBeliefID, rec.AgentID); err != nil {
			e.logger.Error("stake migration failed after conversion",
				zap.String("agent", rec.AgentName),
				zap.String("from", from.String()),
				zap.String("to", opponentBeliefID.String()),
				zap.Error(err))
		}

		e.logger.Info("agent converted",
			zap.String("agent", rec.AgentName),
			zap.String("from", from.String()),
			zap.String("to", opponentBeliefID.String()),
			zap.String("converted_by", p.OpponentName))
	}

	rec.StrategyEffectiveness[p.Strategy] = stats

	if err := e.beliefs.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save belief record: %w", err)
	}
	return res, nil
}

// RecordDebateOutcome folds a settled verdict into the record's tally
// and staking totals.
func (e *Engine) RecordDebateOutcome(ctx context.Context, rec *domain.BeliefRecord, entry domain.DebateOutcomeEntry) error {
	switch entry.Outcome {
	case domain.OutcomeWin:
		rec.Debates.Wins++
		rec.Staking.TotalWon += entry.Stake
	case domain.OutcomeLoss:
		rec.Debates.Losses++
		rec.Staking.TotalLost += entry.Stake
	case domain.OutcomeStalemate:
		rec.Debates.Stalemates++
	}
	rec.Debates.History = append(rec.Debates.History, entry)
	if err := e.beliefs.Save(ctx, rec); err != nil {
		return fmt.Errorf("save belief record: %w", err)
	}
	return nil
}

// RecordConversion credits this agent's record with having pulled
// another agent over. Called when a conversion announcement naming this
// agent as the converter is observed.
func (e *Engine) RecordConversion(ctx context.Context, rec *domain.BeliefRecord, convertedAgent string) error {
	for _, a := range rec.ConvertedAgents {
		if a == convertedAgent {
			return nil
		}
	}
	rec.ConvertedAgents = append(rec.ConvertedAgents, convertedAgent)
	rec.ConversionCount++
	if rec.RelationshipMap == nil {
		rec.RelationshipMap = make(map[string]domain.Relationship)
	}
	rec.RelationshipMap[convertedAgent] = domain.RelationshipAlly
	if err := e.beliefs.Save(ctx, rec); err != nil {
		return fmt.Errorf("save belief record: %w", err)
	}
	return nil
}
