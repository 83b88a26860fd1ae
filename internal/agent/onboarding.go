package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/store"
)

// Onboarder brings an agent into the arena: pool entry, the initial
// stake on its belief, the seeded record, and the entry announcement.
type Onboarder struct {
	beliefs domain.BeliefStore
	ledger  domain.Ledger
	channel domain.Channel
	logger  *zap.Logger
}

func NewOnboarder(beliefs domain.BeliefStore, ledger domain.Ledger, channel domain.Channel, logger *zap.Logger) *Onboarder {
	return &Onboarder{beliefs: beliefs, ledger: ledger, channel: channel, logger: logger}
}

// Onboard is idempotent: an agent already entered and recorded gets its
// existing record back untouched.
func (o *Onboarder) Onboard(ctx context.Context, info Info, stakeAmount int64, announceChannelID string) (*domain.BeliefRecord, error) {
	rec, err := o.beliefs.Get(ctx, info.AgentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load belief record: %w", err)
	}

	entered, err := o.ledger.HasEntered(ctx, info.AgentID)
	if err != nil {
		return nil, fmt.Errorf("check pool entry: %w", err)
	}
	if rec != nil && entered {
		return rec, nil
	}

	if !entered {
		if err := o.ledger.EnterPool(ctx, info.AgentID); err != nil {
			return nil, fmt.Errorf("enter pool: %w", err)
		}
		if err := o.ledger.Stake(ctx, info.Belief, info.AgentID, stakeAmount); err != nil {
			return nil, fmt.Errorf("stake on belief: %w", err)
		}
	}

	// The ledger is the source of truth for what is actually staked.
	// An entered agent with a lost record gets its real stake back.
	staked, err := o.ledger.StakeInfo(ctx, info.AgentID, info.Belief)
	if err != nil {
		return nil, fmt.Errorf("read stake: %w", err)
	}

	if rec == nil {
		rec = domain.NewBeliefRecord(info.AgentID, info.Name, info.Belief)
	}
	now := time.Now()
	rec.HasEntered = true
	rec.EntryTime = &now
	rec.IsCurrentlyStaked = staked > 0
	rec.CurrentStakedAmount = staked
	rec.CurrentStakedBeliefID = info.Belief
	rec.Staking.TotalStaked += staked

	if err := o.beliefs.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save belief record: %w", err)
	}

	if announceChannelID != "" {
		if err := o.channel.Post(ctx, announceChannelID, FormatEntryAnnouncement(info)); err != nil {
			o.logger.Warn("entry announcement failed", zap.String("agent", info.Name), zap.Error(err))
		}
	}

	o.logger.Info("agent onboarded",
		zap.String("agent", info.Name),
		zap.Int("agent_id", info.AgentID),
		zap.String("belief", info.Belief.String()),
		zap.Int64("stake", staked))
	return rec, nil
}
