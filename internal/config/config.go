package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by AGORA_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("AGORA_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// AgentName returns the philosopher this process runs as.
func AgentName() string {
	return os.Getenv("AGENT_NAME")
}

func AgentID() int {
	id, err := strconv.Atoi(os.Getenv("AGENT_ID"))
	if err != nil {
		return 0
	}
	return id
}

// AgentBelief returns the seed belief label for onboarding.
func AgentBelief() string {
	return os.Getenv("AGENT_BELIEF")
}

// CycleInterval returns the decision-cycle interval.
// Defaults to 60 seconds.
func CycleInterval() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("CYCLE_INTERVAL_SECONDS"))
	if err != nil || secs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// LLMProvider returns the configured language-model provider.
// Valid values: anthropic, gemini, ollama, mock. Defaults to "ollama".
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "ollama"
	}
	return p
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func OllamaURL() string {
	u := os.Getenv("OLLAMA_URL")
	if u == "" {
		return "http://localhost:11434"
	}
	return u
}

func OllamaModel() string {
	m := os.Getenv("OLLAMA_MODEL")
	if m == "" {
		return "llama3.1:8b"
	}
	return m
}

// LLMAPIKey returns the API key for the configured provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	default:
		return ""
	}
}

// StakeAmount returns the amount staked on entry, in the ledger's
// smallest unit. Defaults to 100.
func StakeAmount() int64 {
	amount, err := strconv.ParseInt(os.Getenv("STAKE_AMOUNT"), 10, 64)
	if err != nil || amount <= 0 {
		return 100
	}
	return amount
}

func DiscordBotToken() string {
	return os.Getenv("DISCORD_BOT_TOKEN")
}

// Channel ids for the three shared channels agents use.

func TempleStepsChannelID() string {
	return os.Getenv("CHANNEL_TEMPLE_STEPS")
}

func DebateArenaChannelID() string {
	return os.Getenv("CHANNEL_DEBATE_ARENA")
}

func AnnouncementsChannelID() string {
	return os.Getenv("CHANNEL_ANNOUNCEMENTS")
}

// RateLimitRPS returns requests per second limit for the status API.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}
