package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/agent"
	"github.com/agora-arena/agora/internal/channel"
	"github.com/agora-arena/agora/internal/config"
	"github.com/agora-arena/agora/internal/conviction"
	"github.com/agora-arena/agora/internal/debate"
	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/ledger"
	"github.com/agora-arena/agora/internal/llm"
	"github.com/agora-arena/agora/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	registry := agent.NewStaticRegistry()
	self, ok := registry.LookupID(config.AgentID())
	if !ok {
		// Not on the default roster; build identity from the environment.
		belief, bok := domain.BeliefIDFromName(config.AgentBelief())
		if config.AgentName() == "" || config.AgentID() == 0 || !bok {
			logger.Fatal("AGENT_NAME, AGENT_ID and AGENT_BELIEF are required for agents off the default roster")
		}
		self = agent.Info{AgentID: config.AgentID(), Name: config.AgentName(), Belief: belief}
	}
	persona := agent.PersonaFor(self)

	gen, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey(), config.OllamaURL(), config.OllamaModel())
	if err != nil {
		logger.Fatal("LLM client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
	}
	logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))

	var ch domain.Channel
	if token := config.DiscordBotToken(); token != "" {
		discord, err := channel.NewDiscord(token)
		if err != nil {
			logger.Fatal("discord client initialization failed", zap.Error(err))
		}
		ch = discord
	} else {
		logger.Warn("DISCORD_BOT_TOKEN not set, using in-memory channel")
		ch = channel.NewMock()
	}

	beliefStore := store.NewBeliefStore(pool)
	debateStore := store.NewDebateStore(pool)
	// All agent processes share the database, so the ledger rides the
	// same pool and stays consistent across processes.
	led := ledger.NewPostgres(pool)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	selector := debate.NewStrategySelector(registry, gen, rng, logger)
	engine := debate.NewEngine(debateStore, led, ch, gen, selector,
		domain.Participant{AgentID: self.AgentID, Name: self.Name, Belief: self.Belief.String()},
		persona, config.DebateArenaChannelID(), logger)
	conv := conviction.NewEngine(beliefStore, led, gen, logger)
	preacher := agent.NewPreacher(gen, ch, rng, self, persona, logger)
	onboarder := agent.NewOnboarder(beliefStore, led, ch, logger)

	channels := agent.Channels{
		TempleSteps:   config.TempleStepsChannelID(),
		DebateArena:   config.DebateArenaChannelID(),
		Announcements: config.AnnouncementsChannelID(),
	}

	svc := agent.NewService(self, persona, channels, config.StakeAmount(), agent.Deps{
		Beliefs:    beliefStore,
		Ledger:     led,
		Channel:    ch,
		Generator:  gen,
		Registry:   registry,
		Engine:     engine,
		Conviction: conv,
		Preacher:   preacher,
		Onboarder:  onboarder,
		Rand:       rng,
		Logger:     logger,
	})
	svc.SetInterval(config.CycleInterval())
	svc.Start()

	logger.Info("agent loop started",
		zap.String("agent", self.Name),
		zap.Int("agent_id", self.AgentID),
		zap.String("belief", self.Belief.String()),
		zap.Duration("interval", config.CycleInterval()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down agent")
	svc.Stop()
	logger.Info("agent stopped")
}
