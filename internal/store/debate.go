package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agora-arena/agora/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DebateStore persists one active debate session document per agent.
// Settled sessions are archived in place, never deleted.
type DebateStore struct {
	db *pgxpool.Pool
}

func NewDebateStore(db *pgxpool.Pool) *DebateStore {
	return &DebateStore{db: db}
}

func (s *DebateStore) GetActive(ctx context.Context, agentID int) (*domain.DebateSession, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT doc FROM debate_sessions
		 WHERE agent_id = $1 AND status = 'active'
		 ORDER BY updated_at DESC LIMIT 1`,
		agentID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	session := &domain.DebateSession{}
	if err := json.Unmarshal(doc, session); err != nil {
		return nil, fmt.Errorf("unmarshal debate session: %w", err)
	}
	return session, nil
}

func (s *DebateStore) Save(ctx context.Context, agentID int, session *domain.DebateSession) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal debate session: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO debate_sessions (agent_id, debate_id, status, doc, updated_at)
		 VALUES ($1, $2, 'active', $3, $4)
		 ON CONFLICT (agent_id, debate_id) DO UPDATE SET doc = $3, updated_at = $4`,
		agentID, session.DebateID, doc, time.Now(),
	)
	return err
}

// Archive flips the session out of the active set once a verdict has
// been recorded. The document itself is kept.
func (s *DebateStore) Archive(ctx context.Context, agentID int, debateID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE debate_sessions SET status = 'archived', updated_at = $3
		 WHERE agent_id = $1 AND debate_id = $2 AND status = 'active'`,
		agentID, debateID, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ domain.DebateStore = (*DebateStore)(nil)
