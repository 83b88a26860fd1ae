package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/store"
)

var (
	ErrNoActiveDebate     = errors.New("no active debate")
	ErrNotYourTurn        = errors.New("not this agent's turn")
	ErrDiversityExhausted = errors.New("could not generate a sufficiently novel argument")
)

// maxGenerationAttempts bounds how many times a turn is regenerated
// when the candidate is too short or too similar to prior arguments.
const maxGenerationAttempts = 3

// Engine runs one agent's side of the debate protocol: issuing and
// answering challenges, producing turns in sequence, and detecting
// stalls. Settlement stays with the ledger and the external judge.
type Engine struct {
	debates  domain.DebateStore
	ledger   domain.Ledger
	channel  domain.Channel
	gen      domain.Generator
	selector *StrategySelector
	logger   *zap.Logger

	self    domain.Participant
	persona string
	arena   string
	timeout time.Duration
}

// NewEngine wires one agent's debate engine. arena is the channel id
// debate traffic is posted to.
func NewEngine(debates domain.DebateStore, ledger domain.Ledger, channel domain.Channel, gen domain.Generator, selector *StrategySelector, self domain.Participant, persona, arena string, logger *zap.Logger) *Engine {
	return &Engine{
		debates:  debates,
		ledger:   ledger,
		channel:  channel,
		gen:      gen,
		selector: selector,
		logger:   logger,
		self:     self,
		persona:  persona,
		arena:    arena,
		timeout:  domain.ResponseTimeout,
	}
}

// ActiveSession returns the agent's active debate, or nil when idle.
func (e *Engine) ActiveSession(ctx context.Context) (*domain.DebateSession, error) {
	s, err := e.debates.GetActive(ctx, e.self.AgentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active debate: %w", err)
	}
	return s, nil
}

// IssueChallenge opens an escrow, records the session, and posts the
// challenge banner. The returned session sits at CHALLENGE_ISSUED until
// the opponent responds.
func (e *Engine) IssueChallenge(ctx context.Context, opponent domain.Participant, topic string) (*domain.DebateSession, error) {
	if topic == "" {
		topic = DefaultTopic(e.self.Belief, opponent.Belief)
	}

	debateID, err := e.ledger.CreateEscrow(ctx, e.self.AgentID, opponent.AgentID, domain.DefaultStakeAmount)
	if err != nil {
		return nil, fmt.Errorf("create escrow: %w", err)
	}

	s := domain.NewDebateSession(debateID, topic, domain.DefaultStakeAmount, e.self, opponent, e.arena)
	if err := e.debates.Save(ctx, e.self.AgentID, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := e.channel.Post(ctx, s.ChannelID, FormatChallenge(debateID, e.self, opponent, topic, s.StakeAmount)); err != nil {
		e.logger.Warn("challenge banner post failed", zap.Int64("debate_id", debateID), zap.Error(err))
	}

	e.logger.Info("challenge issued",
		zap.Int64("debate_id", debateID),
		zap.String("opponent", opponent.Name),
		zap.String("topic", topic))
	return s, nil
}

// AcceptChallenge matches the escrow and creates this agent's session
// directly at ESCROW_LOCKED.
func (e *Engine) AcceptChallenge(ctx context.Context, c IncomingChallenge, challenger domain.Participant, reason string) (*domain.DebateSession, error) {
	stake := c.Stake
	if stake == 0 {
		stake = domain.DefaultStakeAmount
	}
	if err := e.ledger.MatchEscrow(ctx, c.DebateID, stake); err != nil {
		return nil, fmt.Errorf("match escrow: %w", err)
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic(challenger.Belief, e.self.Belief)
	}

	s := domain.NewDebateSession(c.DebateID, topic, stake, challenger, e.self, e.arena)
	s.CurrentPhase = domain.PhaseEscrowLocked
	if err := e.debates.Save(ctx, e.self.AgentID, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := e.channel.Post(ctx, s.ChannelID, FormatAcceptance(e.self, challenger, reason)); err != nil {
		e.logger.Warn("acceptance post failed", zap.Int64("debate_id", c.DebateID), zap.Error(err))
	}

	e.logger.Info("challenge accepted",
		zap.Int64("debate_id", c.DebateID),
		zap.String("challenger", challenger.Name))
	return s, nil
}

// DeclineChallenge releases the escrow and posts the refusal.
func (e *Engine) DeclineChallenge(ctx context.Context, c IncomingChallenge, challenger domain.Participant, reason string) error {
	if err := e.ledger.DeclineEscrow(ctx, c.DebateID); err != nil {
		return fmt.Errorf("decline escrow: %w", err)
	}
	if err := e.channel.Post(ctx, e.arena, FormatDecline(e.self, challenger, reason)); err != nil {
		e.logger.Warn("decline post failed", zap.Int64("debate_id", c.DebateID), zap.Error(err))
	}
	return nil
}

// MarkEvaluated records that the concluded debate's conviction impact
// has been applied, so settlement never runs twice.
func (e *Engine) MarkEvaluated(ctx context.Context, s *domain.DebateSession) error {
	s.ConvictionEvaluated = true
	return e.debates.Save(ctx, e.self.AgentID, s)
}

// MarkAccepted advances the challenger's session once the opponent's
// acceptance has been observed on the channel.
func (e *Engine) MarkAccepted(ctx context.Context, s *domain.DebateSession) error {
	if s.CurrentPhase != domain.PhaseChallengeIssued {
		return nil
	}
	s.CurrentPhase = domain.PhaseEscrowLocked
	s.LastActivityAt = time.Now()
	return e.debates.Save(ctx, e.self.AgentID, s)
}

// ExecuteTurn produces this agent's next utterance if the session's
// current phase calls for one, posts it, and advances the phase.
func (e *Engine) ExecuteTurn(ctx context.Context, s *domain.DebateSession) error {
	if s == nil || !s.Active() {
		return ErrNoActiveDebate
	}

	// ESCROW_LOCKED is a silent phase; both sides advance past it
	// independently, then the challenger opens.
	if s.CurrentPhase == domain.PhaseEscrowLocked {
		s.Advance()
		if err := e.debates.Save(ctx, e.self.AgentID, s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	role := s.RoleOf(e.self.AgentID)
	if !s.IsTurn(role) {
		return ErrNotYourTurn
	}
	opponent := s.Opponent(role)

	strategy := e.selector.Select(ctx, SelectParams{
		AgentName:    e.self.Name,
		OpponentName: opponent.Name,
		Phase:        s.CurrentPhase,
		Previous:     e.ownStrategies(s),
	})

	argument, err := e.generateArgument(ctx, s, opponent, strategy)
	if err != nil {
		return err
	}

	s.AppendTurn(domain.Turn{
		ID:        uuid.New(),
		AgentID:   e.self.AgentID,
		Agent:     e.self.Name,
		Phase:     s.CurrentPhase,
		Content:   argument,
		Strategy:  strategy,
		Timestamp: time.Now(),
	})
	phase := s.CurrentPhase
	s.Advance()

	if err := e.debates.Save(ctx, e.self.AgentID, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := e.channel.Post(ctx, s.ChannelID, FormatArgument(e.self, phase, argument)); err != nil {
		e.logger.Warn("argument post failed", zap.Int64("debate_id", s.DebateID), zap.Error(err))
	}

	e.logger.Info("turn executed",
		zap.Int64("debate_id", s.DebateID),
		zap.String("phase", string(phase)),
		zap.String("strategy", string(strategy)),
		zap.Int("length", len(argument)))

	if s.CurrentPhase == domain.PhaseConcluded {
		if err := e.channel.Post(ctx, s.ChannelID, FormatConcluded(s)); err != nil {
			e.logger.Warn("conclusion post failed", zap.Int64("debate_id", s.DebateID), zap.Error(err))
		}
	}
	return nil
}

// ObserveOpponentTurn records the opponent's utterance seen on the
// channel into this agent's copy of the session and advances the phase.
func (e *Engine) ObserveOpponentTurn(ctx context.Context, s *domain.DebateSession, content string) error {
	role := s.RoleOf(e.self.AgentID)
	if s.IsTurn(role) || s.CurrentPhase.Speaker() == domain.RoleNone {
		return ErrNotYourTurn
	}
	opponent := s.Opponent(role)

	s.AppendTurn(domain.Turn{
		ID:        uuid.New(),
		AgentID:   opponent.AgentID,
		Agent:     opponent.Name,
		Phase:     s.CurrentPhase,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.Advance()
	return e.debates.Save(ctx, e.self.AgentID, s)
}

// ForfeitResult reports a timeout forfeit.
type ForfeitResult struct {
	Forfeiter domain.Participant
	Winner    domain.Participant
}

// CheckTimeout forfeits the debate against the current speaker when the
// session has gone stale. Returns nil when nothing timed out.
func (e *Engine) CheckTimeout(ctx context.Context, s *domain.DebateSession) (*ForfeitResult, error) {
	if s == nil || !s.TimedOut(e.timeout) {
		return nil, nil
	}

	speaker := s.CurrentPhase.Speaker()
	if speaker == domain.RoleNone {
		return nil, nil
	}
	forfeiter := s.Participant(speaker)
	winner := s.Opponent(speaker)

	verdict := fmt.Sprintf("FORFEIT: %s failed to respond within the time limit. %s wins by default.", forfeiter.Name, winner.Name)
	if err := e.ledger.SubmitVerdict(ctx, s.DebateID, verdict); err != nil {
		e.logger.Error("forfeit verdict submission failed", zap.Int64("debate_id", s.DebateID), zap.Error(err))
	}
	if err := e.channel.Post(ctx, s.ChannelID, FormatForfeit(forfeiter, winner)); err != nil {
		e.logger.Warn("forfeit post failed", zap.Int64("debate_id", s.DebateID), zap.Error(err))
	}
	if err := e.debates.Archive(ctx, e.self.AgentID, s.DebateID); err != nil {
		return nil, fmt.Errorf("archive forfeited session: %w", err)
	}

	e.logger.Info("debate forfeited",
		zap.Int64("debate_id", s.DebateID),
		zap.String("forfeiter", forfeiter.Name),
		zap.String("winner", winner.Name))
	return &ForfeitResult{Forfeiter: forfeiter, Winner: winner}, nil
}

// Archive retires a settled session.
func (e *Engine) Archive(ctx context.Context, s *domain.DebateSession) error {
	return e.debates.Archive(ctx, e.self.AgentID, s.DebateID)
}

func (e *Engine) ownStrategies(s *domain.DebateSession) []domain.Strategy {
	var out []domain.Strategy
	for _, t := range s.Transcript {
		if t.AgentID == e.self.AgentID {
			out = append(out, t.Strategy)
		}
	}
	return out
}

// generateArgument asks the model for a turn, regenerating when the
// candidate is too short or fails the diversity check. Oversized
// candidates are truncated rather than rejected.
func (e *Engine) generateArgument(ctx context.Context, s *domain.DebateSession, opponent domain.Participant, strategy domain.Strategy) (string, error) {
	prior := s.ArgumentsBy(e.self.Name)
	var lastOpposing string
	if t := s.LastArgumentAgainst(e.self.Name); t != nil {
		lastOpposing = t.Content
	}

	prompt := buildArgumentPrompt(e.persona, e.self, opponent, s, strategy, lastOpposing)

	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		resp, err := e.gen.Generate(ctx, prompt, domain.GenerateOpts{MaxTokens: 400, Temperature: 0.8})
		if err != nil {
			return "", fmt.Errorf("generate argument: %w", err)
		}
		candidate := strings.TrimSpace(resp)
		if len(candidate) > 2*domain.MaxArgumentLength {
			candidate = candidate[:2*domain.MaxArgumentLength]
		}
		if len(candidate) < domain.MinArgumentLength {
			e.logger.Debug("argument too short, regenerating",
				zap.Int("attempt", attempt), zap.Int("length", len(candidate)))
			continue
		}

		check := CheckDiversity(candidate, prior)
		if check.Diverse {
			return candidate, nil
		}
		e.logger.Debug("argument too similar, regenerating",
			zap.Int("attempt", attempt), zap.Int("similarity", check.Similarity))
		prompt = buildArgumentPrompt(e.persona, e.self, opponent, s, strategy, lastOpposing) +
			"\n\n" + diversityHint(prior)
	}
	return "", ErrDiversityExhausted
}
