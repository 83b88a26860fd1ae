// Package conviction evaluates how exposure to opposing arguments moves
// an agent's conviction, and applies the consequences, including
// conversion to the opponent's belief.
package conviction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/retry"
)

// Delta bounds per exposure. Arguments can erode conviction far faster
// than they reinforce it.
const (
	MinDelta = -30
	MaxDelta = 5

	// SermonMultiplier halves the impact of broadcast persuasion
	// relative to direct debate.
	SermonMultiplier = 0.5

	evalMaxAttempts = 3
	evalBackoffUnit = time.Second
)

// Evaluation is the judge's parsed reading of one persuasion attempt.
// VulnerabilityNotes describe what would have worked better and may be
// empty when the model omits them.
type Evaluation struct {
	Delta                 int    `json:"delta"`
	Reasoning             string `json:"reasoning"`
	VulnerabilityNotes    string `json:"vulnerabilityNotes,omitempty"`
	StrategyEffectiveness int    `json:"strategyEffectiveness"`
}

// fallbackEvaluation is used when every evaluation attempt fails.
// A failed evaluation never moves conviction.
var fallbackEvaluation = Evaluation{
	Delta:                 0,
	Reasoning:             "evaluation failed — conviction unchanged",
	StrategyEffectiveness: 50,
}

// Engine scores exposures and amends belief records.
type Engine struct {
	beliefs domain.BeliefStore
	ledger  domain.Ledger
	gen     domain.Generator
	logger  *zap.Logger
	policy  retry.Policy
}

func NewEngine(beliefs domain.BeliefStore, ledger domain.Ledger, gen domain.Generator, logger *zap.Logger) *Engine {
	return &Engine{
		beliefs: beliefs,
		ledger:  ledger,
		gen:     gen,
		logger:  logger,
		policy:  retry.Policy{MaxAttempts: evalMaxAttempts, Backoff: retry.Linear(evalBackoffUnit)},
	}
}

// EvaluateParams describe one exposure of the target to an opposing
// argument.
type EvaluateParams struct {
	Target         *domain.BeliefRecord
	OpponentName   string
	OpponentBelief string
	Strategy       domain.Strategy
	Argument       string
	// Transcript carries the full debate context when the exposure is
	// scored at conclusion. Empty for sermons.
	Transcript string
	// Sermon marks broadcast persuasion, which lands at half impact.
	Sermon bool
}

// Evaluate asks the judge model to score the exposure. It never fails:
// exhausted retries produce the no-op fallback evaluation. The returned
// delta is already clamped and sermon-adjusted.
func (e *Engine) Evaluate(ctx context.Context, p EvaluateParams) Evaluation {
	prompt := buildEvalPrompt(p)

	var eval Evaluation
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		resp, genErr := e.gen.Generate(ctx, prompt, domain.GenerateOpts{MaxTokens: 300, Temperature: 0.2})
		if genErr != nil {
			return genErr
		}
		parsed, parseErr := parseEvaluation(resp)
		if parseErr != nil {
			return parseErr
		}
		eval = parsed
		return nil
	})
	if err != nil {
		e.logger.Warn("conviction evaluation failed, using fallback",
			zap.String("agent", p.Target.AgentName),
			zap.String("opponent", p.OpponentName),
			zap.Error(err))
		return fallbackEvaluation
	}

	eval.Delta = clamp(eval.Delta, MinDelta, MaxDelta)
	if p.Sermon {
		eval.Delta = int(math.Round(float64(eval.Delta) * SermonMultiplier))
	}
	if eval.StrategyEffectiveness < 0 || eval.StrategyEffectiveness > 100 {
		eval.StrategyEffectiveness = 50
	}
	return eval
}

func buildEvalPrompt(p EvaluateParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an impartial judge of philosophical persuasion.\n\n")
	fmt.Fprintf(&b, "%s currently holds %s with conviction %d/100.\n",
		p.Target.AgentName, p.Target.CurrentBelief, p.Target.Conviction)
	if p.Transcript != "" {
		fmt.Fprintf(&b, "The debate so far:\n\n%s\n\n", p.Transcript)
	}
	fmt.Fprintf(&b, "%s (%s) argued, using the %s strategy:\n\n%s\n\n",
		p.OpponentName, p.OpponentBelief, p.Strategy, p.Argument)
	fmt.Fprintf(&b, "How much does this shift %s's conviction? Respond ONLY with JSON:\n", p.Target.AgentName)
	fmt.Fprintf(&b, `{"delta": <integer %d to %d>, "reasoning": "<one sentence>", "vulnerabilityNotes": "<what would have worked better>", "strategyEffectiveness": <integer 0 to 100>}`,
		MinDelta, MaxDelta)
	return b.String()
}

var (
	fenceRe = regexp.MustCompile("```(?:json)?")
	deltaRe = regexp.MustCompile(`"delta"\s*:\s*(-?\d+(?:\.\d+)?)`)
	effRe   = regexp.MustCompile(`"strategyEffectiveness"\s*:\s*(\d+)`)
)

// parseEvaluation accepts both clean JSON and model output that wraps
// the JSON in code fences or prose. Falls back to field extraction when
// the full object does not unmarshal. Fractional deltas round to the
// nearest integer rather than truncating toward zero.
func parseEvaluation(resp string) (Evaluation, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(resp, ""))
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var raw struct {
		Delta                 float64 `json:"delta"`
		Reasoning             string  `json:"reasoning"`
		VulnerabilityNotes    string  `json:"vulnerabilityNotes"`
		StrategyEffectiveness int     `json:"strategyEffectiveness"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err == nil {
		return Evaluation{
			Delta:                 int(math.Round(raw.Delta)),
			Reasoning:             raw.Reasoning,
			VulnerabilityNotes:    raw.VulnerabilityNotes,
			StrategyEffectiveness: raw.StrategyEffectiveness,
		}, nil
	}

	m := deltaRe.FindStringSubmatch(cleaned)
	if m == nil {
		return Evaluation{}, fmt.Errorf("conviction: unparseable evaluation %q", truncateForLog(resp))
	}
	var eval Evaluation
	d, _ := strconv.ParseFloat(m[1], 64)
	eval.Delta = int(math.Round(d))
	eval.StrategyEffectiveness = 50
	if em := effRe.FindStringSubmatch(cleaned); em != nil {
		eval.StrategyEffectiveness, _ = strconv.Atoi(em[1])
	}
	return eval, nil
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
