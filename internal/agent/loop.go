package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/conviction"
	"github.com/agora-arena/agora/internal/debate"
	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/lifecycle"
	"github.com/agora-arena/agora/internal/store"
	"github.com/agora-arena/agora/internal/verdict"
)

const (
	defaultCycleInterval = time.Minute
	cycleTimeout         = 45 * time.Second
)

// Channels names the three arena channels an agent watches.
type Channels struct {
	TempleSteps   string
	DebateArena   string
	Announcements string
}

// Service is the autonomous decision loop. Every cycle it re-derives
// the agent's lifecycle state from stored facts and acts on it, so a
// restart in any phase resumes cleanly.
type Service struct {
	self     Info
	persona  string
	channels Channels
	stake    int64

	beliefs  domain.BeliefStore
	ledger   domain.Ledger
	channel  domain.Channel
	gen      domain.Generator
	registry Registry

	engine    *debate.Engine
	conv      *conviction.Engine
	preacher  *Preacher
	onboarder *Onboarder
	cooldowns *CooldownTracker
	rng       *rand.Rand
	logger    *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup

	cursor     time.Time
	discovered map[string]Info
	handled    map[int64]bool
}

// Deps bundles the collaborators a Service needs.
type Deps struct {
	Beliefs   domain.BeliefStore
	Ledger    domain.Ledger
	Channel   domain.Channel
	Generator domain.Generator
	Registry  Registry

	Engine     *debate.Engine
	Conviction *conviction.Engine
	Preacher   *Preacher
	Onboarder  *Onboarder

	Rand   *rand.Rand
	Logger *zap.Logger
}

func NewService(self Info, persona string, channels Channels, stake int64, d Deps) *Service {
	return &Service{
		self:       self,
		persona:    persona,
		channels:   channels,
		stake:      stake,
		beliefs:    d.Beliefs,
		ledger:     d.Ledger,
		channel:    d.Channel,
		gen:        d.Generator,
		registry:   d.Registry,
		engine:     d.Engine,
		conv:       d.Conviction,
		preacher:   d.Preacher,
		onboarder:  d.Onboarder,
		cooldowns:  NewCooldownTracker(),
		rng:        d.Rand,
		logger:     d.Logger,
		interval:   defaultCycleInterval,
		stopCh:     make(chan struct{}),
		cursor:     time.Now().Add(-defaultCycleInterval),
		discovered: make(map[string]Info),
		handled:    make(map[int64]bool),
	}
}

func (s *Service) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the decision loop on a periodic schedule in a background
// goroutine.
func (s *Service) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("decision loop started",
			zap.String("agent", s.self.Name),
			zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
				if err := s.RunCycle(ctx); err != nil {
					s.logger.Error("decision cycle failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("decision loop stopped", zap.String("agent", s.self.Name))
				return
			}
		}
	}()
}

// Stop gracefully stops the loop.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunCycle executes one decision cycle: discover newcomers, resolve the
// lifecycle state, then act on whatever the state permits.
func (s *Service) RunCycle(ctx context.Context) error {
	since := s.cursor
	s.cursor = time.Now()

	s.discover(ctx, since)

	rec, err := s.beliefs.Get(ctx, s.self.AgentID)
	if errors.Is(err, store.ErrNotFound) {
		rec = nil
	} else if err != nil {
		return fmt.Errorf("load belief record: %w", err)
	}

	if rec != nil {
		s.creditConversions(ctx, rec, since)
		s.witnessSermons(ctx, rec, since)
	}

	session, err := s.engine.ActiveSession(ctx)
	if err != nil {
		return err
	}
	entered, err := s.ledger.HasEntered(ctx, s.self.AgentID)
	if err != nil {
		return fmt.Errorf("check pool entry: %w", err)
	}

	staked := rec != nil && rec.IsCurrentlyStaked
	state := lifecycle.Resolve(lifecycle.Snapshot{
		Record:  rec,
		Session: session,
		Entered: entered,
		Staked:  staked,
	})
	s.logger.Debug("cycle state resolved",
		zap.String("agent", s.self.Name),
		zap.String("state", string(state)))

	switch state {
	case lifecycle.StateUninitialized, lifecycle.StateEntered:
		_, err := s.onboarder.Onboard(ctx, s.self, s.stake, s.channels.Announcements)
		return err

	case lifecycle.StateAwaitingVerdict:
		if err := s.settleConviction(ctx, rec, session); err != nil {
			return err
		}
		return s.resolveVerdict(ctx, rec, session)

	case lifecycle.StateInDebate:
		return s.advanceDebate(ctx, rec, session)

	case lifecycle.StateConverting:
		// Conversion is applied at exposure time; reaching this state
		// means conviction eroded without a converting belief in play.
		s.logger.Info("conviction below threshold, holding position",
			zap.Int("conviction", rec.Conviction))
		return nil

	case lifecycle.StateActive:
		handled, err := s.respondToChallenges(ctx, rec, since)
		if handled || err != nil {
			return err
		}
		return s.autonomousAction(ctx, rec)
	}
	return nil
}

// discover watches the announcements channel for agents entering the
// arena that the static roster does not know.
func (s *Service) discover(ctx context.Context, since time.Time) {
	if s.channels.Announcements == "" {
		return
	}
	msgs, err := s.channel.RecentMessages(ctx, s.channels.Announcements, since)
	if err != nil {
		s.logger.Warn("announcement scan failed", zap.Error(err))
		return
	}
	for _, m := range msgs {
		info, ok := ParseEntryAnnouncement(m.Content)
		if !ok || strings.EqualFold(info.Name, s.self.Name) {
			continue
		}
		if _, known := s.registry.Lookup(info.Name); known {
			continue
		}
		if _, seen := s.discovered[strings.ToLower(info.Name)]; !seen {
			s.logger.Info("new agent discovered",
				zap.String("name", info.Name),
				zap.String("belief", info.Belief.String()))
		}
		s.discovered[strings.ToLower(info.Name)] = info
	}
}

func (s *Service) lookup(name string) (Info, bool) {
	if info, ok := s.registry.Lookup(name); ok {
		return info, true
	}
	info, ok := s.discovered[strings.ToLower(name)]
	return info, ok
}

func (s *Service) roster() []Info {
	all := s.registry.All()
	for _, info := range s.discovered {
		all = append(all, info)
	}
	return all
}

// respondToChallenges answers at most one incoming challenge per cycle.
func (s *Service) respondToChallenges(ctx context.Context, rec *domain.BeliefRecord, since time.Time) (bool, error) {
	msgs, err := s.channel.RecentMessages(ctx, s.channels.DebateArena, since)
	if err != nil {
		return false, fmt.Errorf("arena scan: %w", err)
	}
	c, ok := debate.DetectChallenge(msgs, s.self.Name)
	if !ok || s.handled[c.DebateID] {
		return false, nil
	}
	s.handled[c.DebateID] = true

	challenger := domain.Participant{Name: c.ChallengerName, Belief: c.ChallengerBelief}
	if info, known := s.lookup(c.ChallengerName); known {
		challenger.AgentID = info.AgentID
	}

	decision := debate.ShouldAcceptChallenge(
		rec.CurrentBelief, rec.Conviction,
		c.ChallengerBelief, c.ChallengerName,
		rec.Relationship(c.ChallengerName))

	if !decision.Accept {
		return true, s.engine.DeclineChallenge(ctx, c, challenger, decision.Reason)
	}
	_, err = s.engine.AcceptChallenge(ctx, c, challenger, decision.Reason)
	return true, err
}

// advanceDebate plays this agent's part in the active session: waiting
// out issuance, speaking when it is our phase, and witnessing the
// opponent's turns otherwise.
func (s *Service) advanceDebate(ctx context.Context, rec *domain.BeliefRecord, session *domain.DebateSession) error {
	if session.CurrentPhase == domain.PhaseChallengeIssued {
		return s.pollChallengeResponse(ctx, session)
	}

	if res, err := s.engine.CheckTimeout(ctx, session); err != nil {
		return err
	} else if res != nil {
		outcome := domain.OutcomeWin
		if res.Forfeiter.AgentID == s.self.AgentID {
			outcome = domain.OutcomeLoss
		}
		return s.conv.RecordDebateOutcome(ctx, rec, domain.DebateOutcomeEntry{
			DebateID:  session.DebateID,
			Opponent:  session.Opponent(session.RoleOf(s.self.AgentID)).Name,
			Outcome:   outcome,
			Stake:     session.StakeAmount,
			Timestamp: time.Now(),
		})
	}

	err := s.engine.ExecuteTurn(ctx, session)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, debate.ErrNotYourTurn):
		return s.observeOpponent(ctx, rec, session)
	case errors.Is(err, debate.ErrDiversityExhausted):
		// Stay silent this cycle; the forfeit clock keeps running.
		s.logger.Warn("no novel argument produced this cycle",
			zap.Int64("debate_id", session.DebateID))
		return nil
	default:
		return err
	}
}

func (s *Service) pollChallengeResponse(ctx context.Context, session *domain.DebateSession) error {
	msgs, err := s.channel.RecentMessages(ctx, s.channels.DebateArena, session.StartedAt)
	if err != nil {
		return fmt.Errorf("arena scan: %w", err)
	}
	for _, m := range msgs {
		if accepter, _, ok := debate.ParseAcceptance(m.Content); ok &&
			strings.EqualFold(accepter, session.Challenged.Name) {
			return s.engine.MarkAccepted(ctx, session)
		}
		if decliner, _, ok := debate.ParseDecline(m.Content); ok &&
			strings.EqualFold(decliner, session.Challenged.Name) {
			s.logger.Info("challenge declined by opponent",
				zap.Int64("debate_id", session.DebateID),
				zap.String("opponent", session.Challenged.Name))
			return s.engine.Archive(ctx, session)
		}
	}
	return nil
}

// observeOpponent picks the opponent's latest posted turn off the
// arena channel and folds it into our session copy. Conviction is not
// touched here; the concluded transcript is scored once in
// settleConviction.
func (s *Service) observeOpponent(ctx context.Context, rec *domain.BeliefRecord, session *domain.DebateSession) error {
	opponent := session.Opponent(session.RoleOf(s.self.AgentID))

	msgs, err := s.channel.RecentMessages(ctx, s.channels.DebateArena, session.LastActivityAt)
	if err != nil {
		return fmt.Errorf("arena scan: %w", err)
	}
	for _, m := range msgs {
		speaker, _, content, ok := debate.ParseArgument(m.Content)
		if !ok || !strings.EqualFold(speaker, opponent.Name) {
			continue
		}

		if err := s.engine.ObserveOpponentTurn(ctx, session, content); err != nil {
			if errors.Is(err, debate.ErrNotYourTurn) {
				return nil
			}
			return err
		}
		return nil
	}
	return nil
}

// settleConviction scores the concluded debate against this agent,
// exactly once: the opponent's final argument is evaluated with the
// full transcript as context, the delta applied, and the session
// flagged so a later cycle cannot re-apply it.
func (s *Service) settleConviction(ctx context.Context, rec *domain.BeliefRecord, session *domain.DebateSession) error {
	if session.ConvictionEvaluated {
		return nil
	}

	opponent := session.Opponent(session.RoleOf(s.self.AgentID))
	final := session.LastArgumentAgainst(s.self.Name)
	if final == nil {
		// Forfeit before the opponent ever spoke; nothing to score.
		return s.engine.MarkEvaluated(ctx, session)
	}

	strategy := final.Strategy
	if strategy == "" {
		strategy = domain.StrategyLogicalDismantling
		if info, known := s.lookup(opponent.Name); known && info.Profile.NaturalStrategy != "" {
			strategy = info.Profile.NaturalStrategy
		}
	}

	p := conviction.EvaluateParams{
		Target:         rec,
		OpponentName:   opponent.Name,
		OpponentBelief: opponent.Belief,
		Strategy:       strategy,
		Argument:       final.Content,
		Transcript:     session.FormatTranscript(),
	}
	eval := s.conv.Evaluate(ctx, p)
	res, err := s.conv.Apply(ctx, p, eval)
	if err != nil {
		return err
	}
	if res.Converted {
		s.announceConversion(ctx, opponent, res)
	}
	return s.engine.MarkEvaluated(ctx, session)
}

var sermonRe = regexp.MustCompile(`(?s)^🕊️ \*\*(.+?)\*\* preaches \((.+?)\):\n\n(.+)$`)

// witnessSermons folds broadcast persuasion from the temple steps into
// this agent's conviction. Sermons land at half the impact of a direct
// debate argument; same-belief sermons are ignored.
func (s *Service) witnessSermons(ctx context.Context, rec *domain.BeliefRecord, since time.Time) {
	if s.channels.TempleSteps == "" {
		return
	}
	msgs, err := s.channel.RecentMessages(ctx, s.channels.TempleSteps, since)
	if err != nil {
		s.logger.Warn("temple steps scan failed", zap.Error(err))
		return
	}
	for _, m := range msgs {
		match := sermonRe.FindStringSubmatch(m.Content)
		if match == nil || strings.EqualFold(match[1], s.self.Name) {
			continue
		}
		preacher, known := s.lookup(match[1])
		if !known || preacher.Belief.String() == rec.CurrentBelief {
			continue
		}

		strategy := domain.StrategyEmotionalBypass
		if preacher.Profile.NaturalStrategy != "" {
			strategy = preacher.Profile.NaturalStrategy
		}

		p := conviction.EvaluateParams{
			Target:         rec,
			OpponentName:   preacher.Name,
			OpponentBelief: preacher.Belief.String(),
			Strategy:       strategy,
			Argument:       strings.TrimSpace(match[3]),
			Sermon:         true,
		}
		eval := s.conv.Evaluate(ctx, p)
		res, err := s.conv.Apply(ctx, p, eval)
		if err != nil {
			s.logger.Warn("sermon exposure failed",
				zap.String("preacher", preacher.Name), zap.Error(err))
			continue
		}
		if res.Converted {
			s.announceConversion(ctx, domain.Participant{
				AgentID: preacher.AgentID,
				Name:    preacher.Name,
				Belief:  preacher.Belief.String(),
			}, res)
		}
	}
}

var conversionRe = regexp.MustCompile(`\*\*(.+?)\*\* has been converted!.*persuaded by \*\*(.+?)\*\*`)

// creditConversions scans the announcements channel for conversions
// this agent caused and records them on its own ledger of souls.
func (s *Service) creditConversions(ctx context.Context, rec *domain.BeliefRecord, since time.Time) {
	if s.channels.Announcements == "" {
		return
	}
	msgs, err := s.channel.RecentMessages(ctx, s.channels.Announcements, since)
	if err != nil {
		s.logger.Warn("announcement scan failed", zap.Error(err))
		return
	}
	for _, m := range msgs {
		match := conversionRe.FindStringSubmatch(m.Content)
		if match == nil || !strings.EqualFold(match[2], s.self.Name) {
			continue
		}
		if err := s.conv.RecordConversion(ctx, rec, match[1]); err != nil {
			s.logger.Warn("failed to record conversion credit",
				zap.String("converted", match[1]), zap.Error(err))
		}
	}
}

func (s *Service) announceConversion(ctx context.Context, converter domain.Participant, res *conviction.ApplyResult) {
	text := fmt.Sprintf("💫 **%s** has been converted! %s now follows %s, persuaded by **%s**.",
		s.self.Name, s.self.Name, res.NewBelief, converter.Name)
	if err := s.channel.Post(ctx, s.channels.Announcements, text); err != nil {
		s.logger.Warn("conversion announcement failed", zap.Error(err))
	}
}

// resolveVerdict waits for the judge's post and settles the record.
func (s *Service) resolveVerdict(ctx context.Context, rec *domain.BeliefRecord, session *domain.DebateSession) error {
	msgs, err := s.channel.RecentMessages(ctx, s.channels.DebateArena, session.StartedAt)
	if err != nil {
		return fmt.Errorf("arena scan: %w", err)
	}
	for _, m := range msgs {
		v, ok := verdict.Parse(m.Content)
		if !ok {
			continue
		}
		if v.DebateID != 0 && v.DebateID != session.DebateID {
			continue
		}
		outcome := v.OutcomeFor(s.self.Name)
		if outcome == domain.OutcomeNone {
			continue
		}

		opponent := session.Opponent(session.RoleOf(s.self.AgentID))
		if err := s.conv.RecordDebateOutcome(ctx, rec, domain.DebateOutcomeEntry{
			DebateID:  session.DebateID,
			Opponent:  opponent.Name,
			Outcome:   outcome,
			Stake:     session.StakeAmount,
			Timestamp: m.Timestamp,
		}); err != nil {
			return err
		}

		s.logger.Info("verdict settled",
			zap.Int64("debate_id", session.DebateID),
			zap.String("outcome", string(outcome)))
		return s.engine.Archive(ctx, session)
	}
	return nil
}

// autonomousAction spends an idle cycle preaching, challenging, or
// doing nothing.
func (s *Service) autonomousAction(ctx context.Context, rec *domain.BeliefRecord) error {
	var allowed []Action
	if s.cooldowns.Remaining(ActionPreach) == 0 && s.channels.TempleSteps != "" {
		allowed = append(allowed, ActionPreach)
	}
	if s.cooldowns.Remaining(ActionChallenge) == 0 {
		allowed = append(allowed, ActionChallenge)
	}
	if len(allowed) == 0 {
		return nil
	}

	action := s.decideAction(ctx, rec, allowed)
	switch action {
	case ActionPreach:
		if !s.cooldowns.Allow(ActionPreach) {
			return nil
		}
		if _, _, err := s.preacher.Deliver(ctx, s.channels.TempleSteps); err != nil {
			return err
		}
		rec.SermonsDelivered++
		return s.beliefs.Save(ctx, rec)

	case ActionChallenge:
		target, ok := s.pickOpponent(rec)
		if !ok {
			return nil
		}
		if !s.cooldowns.Allow(ActionChallenge) {
			return nil
		}
		_, err := s.engine.IssueChallenge(ctx, domain.Participant{
			AgentID: target.AgentID,
			Name:    target.Name,
			Belief:  target.Belief.String(),
		}, "")
		return err
	}
	return nil
}

// decideAction delegates the choice to the model, constrained to the
// allowed set. Anything unparseable means idling this cycle.
func (s *Service) decideAction(ctx context.Context, rec *domain.BeliefRecord, allowed []Action) Action {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}

	prompt := fmt.Sprintf("%s\n\nYou are %s, conviction %d/100 in %s. The arena is quiet.\nChoose your next action from: %s, idle.\nRespond with ONLY the action name.",
		s.persona, s.self.Name, rec.Conviction, rec.CurrentBelief, strings.Join(names, ", "))

	resp, err := s.gen.Generate(ctx, prompt, domain.GenerateOpts{MaxTokens: 20, Temperature: 0.5})
	if err != nil {
		s.logger.Debug("action decision failed, idling", zap.Error(err))
		return ActionIdle
	}
	cleaned := Action(strings.ToLower(strings.TrimSpace(resp)))
	for _, a := range allowed {
		if a == cleaned {
			return a
		}
	}
	return ActionIdle
}

// pickOpponent chooses someone to challenge: rivals first, then anyone
// of a different belief.
func (s *Service) pickOpponent(rec *domain.BeliefRecord) (Info, bool) {
	current, _ := domain.BeliefIDFromName(rec.CurrentBelief)
	var rivals, others []Info
	for _, info := range s.roster() {
		if info.AgentID == s.self.AgentID || info.Belief == current {
			continue
		}
		if rec.Relationship(info.Name) == domain.RelationshipRival {
			rivals = append(rivals, info)
		} else {
			others = append(others, info)
		}
	}
	pool := rivals
	if len(pool) == 0 {
		pool = others
	}
	if len(pool) == 0 {
		return Info{}, false
	}
	return pool[s.rng.Intn(len(pool))], true
}
