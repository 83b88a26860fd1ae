package agent

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Action is something an agent can spend a decision cycle on.
type Action string

const (
	ActionPreach     Action = "preach"
	ActionChallenge  Action = "challenge"
	ActionDebateTurn Action = "debate_turn"
	ActionIdle       Action = "idle"
)

// Cooldown periods per action. Debate turns are governed by the debate
// protocol itself and carry no cooldown.
var cooldownPeriods = map[Action]time.Duration{
	ActionPreach:    10 * time.Minute,
	ActionChallenge: 30 * time.Minute,
}

// CooldownTracker rate-limits actions. Each limited action holds one
// token that refills over its cooldown period, so the first use is
// always allowed.
type CooldownTracker struct {
	mu       sync.Mutex
	limiters map[Action]*rate.Limiter
}

func NewCooldownTracker() *CooldownTracker {
	t := &CooldownTracker{limiters: make(map[Action]*rate.Limiter)}
	for action, period := range cooldownPeriods {
		t.limiters[action] = rate.NewLimiter(rate.Every(period), 1)
	}
	return t
}

// Allow consumes the action's token if available. Actions without a
// configured cooldown always pass.
func (t *CooldownTracker) Allow(a Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.limiters[a]
	if !ok {
		return true
	}
	return lim.Allow()
}

// Remaining reports how long until the action may run again, without
// consuming the token.
func (t *CooldownTracker) Remaining(a Action) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.limiters[a]
	if !ok {
		return 0
	}
	r := lim.Reserve()
	d := r.Delay()
	r.Cancel()
	return d
}
