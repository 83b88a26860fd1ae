package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agora-arena/agora/internal/agent"
	"github.com/agora-arena/agora/internal/domain"
	"github.com/agora-arena/agora/internal/lifecycle"
	"github.com/agora-arena/agora/internal/store"
)

// ArenaHandler exposes read-only arena state: who is here, what they
// believe, and what they are debating. All mutation happens through the
// agent loop; the API is an observer.
type ArenaHandler struct {
	beliefs  domain.BeliefStore
	debates  domain.DebateStore
	registry agent.Registry
	logger   *zap.Logger
}

func NewArenaHandler(beliefs domain.BeliefStore, debates domain.DebateStore, registry agent.Registry, logger *zap.Logger) *ArenaHandler {
	return &ArenaHandler{
		beliefs:  beliefs,
		debates:  debates,
		registry: registry,
		logger:   logger,
	}
}

// AgentSummary is the list-view projection of an agent.
type AgentSummary struct {
	AgentID    int    `json:"agent_id"`
	Name       string `json:"name"`
	Belief     string `json:"belief"`
	Conviction int    `json:"conviction"`
	State      string `json:"state"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Stalemates int    `json:"stalemates"`
}

// AgentDetail is the full status view of one agent.
type AgentDetail struct {
	AgentSummary
	CoreBelief        string   `json:"core_belief"`
	BeliefsHeld       []string `json:"beliefs_held"`
	AllegianceChanges int      `json:"allegiance_changes"`
	ConversionCount   int      `json:"conversion_count"`
	SermonsDelivered  int      `json:"sermons_delivered"`
	TotalStaked       int64    `json:"total_staked"`
	TotalWon          int64    `json:"total_won"`
	TotalLost         int64    `json:"total_lost"`
	ActiveDebateID    *int64   `json:"active_debate_id,omitempty"`
}

// List returns every agent the arena knows about, roster members first.
func (h *ArenaHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := h.beliefs.ListAgentIDs(ctx)
	if err != nil {
		h.logger.Error("failed to list agents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list agents")
		return
	}

	seen := make(map[int]bool, len(ids))
	summaries := make([]AgentSummary, 0, len(ids))
	for _, id := range ids {
		seen[id] = true
		s, err := h.summarize(r, id)
		if err != nil {
			h.logger.Warn("failed to summarize agent", zap.Int("agent_id", id), zap.Error(err))
			continue
		}
		summaries = append(summaries, s)
	}

	// Roster members without a record yet show up as uninitialized.
	for _, info := range h.registry.All() {
		if seen[info.AgentID] {
			continue
		}
		summaries = append(summaries, AgentSummary{
			AgentID: info.AgentID,
			Name:    info.Name,
			Belief:  info.Belief.String(),
			State:   string(lifecycle.StateUninitialized),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agents": summaries,
		"count":  len(summaries),
	})
}

// Get returns the full belief record view for one agent. The path
// parameter is either a numeric agent id or an agent name.
func (h *ArenaHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "agentID")

	var (
		rec *domain.BeliefRecord
		err error
	)
	if id, convErr := strconv.Atoi(key); convErr == nil {
		rec, err = h.beliefs.Get(r.Context(), id)
	} else {
		rec, err = h.beliefs.GetByName(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		h.logger.Error("failed to get agent", zap.String("agent", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get agent")
		return
	}

	session := h.activeSession(r, rec.AgentID)
	state := h.resolve(rec, session)

	detail := AgentDetail{
		AgentSummary: AgentSummary{
			AgentID:    rec.AgentID,
			Name:       rec.AgentName,
			Belief:     rec.CurrentBelief,
			Conviction: rec.Conviction,
			State:      string(state),
			Wins:       rec.Debates.Wins,
			Losses:     rec.Debates.Losses,
			Stalemates: rec.Debates.Stalemates,
		},
		CoreBelief:        rec.CoreBeliefID.String(),
		BeliefsHeld:       rec.BeliefsHeld,
		AllegianceChanges: rec.AllegianceChanges,
		ConversionCount:   rec.ConversionCount,
		SermonsDelivered:  rec.SermonsDelivered,
		TotalStaked:       rec.Staking.TotalStaked,
		TotalWon:          rec.Staking.TotalWon,
		TotalLost:         rec.Staking.TotalLost,
	}
	if session != nil {
		detail.ActiveDebateID = &session.DebateID
	}

	writeJSON(w, http.StatusOK, detail)
}

// GetDebate returns the agent's active debate session, transcript
// included.
func (h *ArenaHandler) GetDebate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "agentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	session, err := h.debates.GetActive(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active debate")
			return
		}
		h.logger.Error("failed to get debate", zap.Int("agent_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get debate")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *ArenaHandler) summarize(r *http.Request, agentID int) (AgentSummary, error) {
	rec, err := h.beliefs.Get(r.Context(), agentID)
	if err != nil {
		return AgentSummary{}, err
	}

	session := h.activeSession(r, agentID)
	state := h.resolve(rec, session)

	return AgentSummary{
		AgentID:    rec.AgentID,
		Name:       rec.AgentName,
		Belief:     rec.CurrentBelief,
		Conviction: rec.Conviction,
		State:      string(state),
		Wins:       rec.Debates.Wins,
		Losses:     rec.Debates.Losses,
		Stalemates: rec.Debates.Stalemates,
	}, nil
}

func (h *ArenaHandler) activeSession(r *http.Request, agentID int) *domain.DebateSession {
	session, err := h.debates.GetActive(r.Context(), agentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("failed to load session", zap.Int("agent_id", agentID), zap.Error(err))
		}
		return nil
	}
	return session
}

func (h *ArenaHandler) resolve(rec *domain.BeliefRecord, session *domain.DebateSession) lifecycle.State {
	// The belief record mirrors pool entry at onboarding time, so the
	// API reads the durable record instead of asking the ledger.
	return lifecycle.Resolve(lifecycle.Snapshot{
		Record:  rec,
		Session: session,
		Entered: rec.HasEntered,
		Staked:  rec.IsCurrentlyStaked,
	})
}
