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

// BeliefStore persists one BeliefRecord document per agent.
type BeliefStore struct {
	db *pgxpool.Pool
}

func NewBeliefStore(db *pgxpool.Pool) *BeliefStore {
	return &BeliefStore{db: db}
}

func (s *BeliefStore) Get(ctx context.Context, agentID int) (*domain.BeliefRecord, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT doc FROM belief_records WHERE agent_id = $1`,
		agentID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unmarshalRecord(doc)
}

func (s *BeliefStore) GetByName(ctx context.Context, agentName string) (*domain.BeliefRecord, error) {
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT doc FROM belief_records WHERE lower(agent_name) = lower($1)`,
		agentName,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unmarshalRecord(doc)
}

// Save writes the whole record in one statement; the update is atomic at
// the row level, which is the only write guarantee callers may assume.
func (s *BeliefStore) Save(ctx context.Context, r *domain.BeliefRecord) error {
	r.UpdatedAt = time.Now()
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal belief record: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO belief_records (agent_id, agent_name, doc, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (agent_id) DO UPDATE SET agent_name = $2, doc = $3, updated_at = $4`,
		r.AgentID, r.AgentName, doc, r.UpdatedAt,
	)
	return err
}

func (s *BeliefStore) ListAgentIDs(ctx context.Context) ([]int, error) {
	rows, err := s.db.Query(ctx, `SELECT agent_id FROM belief_records ORDER BY agent_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func unmarshalRecord(doc []byte) (*domain.BeliefRecord, error) {
	r := &domain.BeliefRecord{}
	if err := json.Unmarshal(doc, r); err != nil {
		return nil, fmt.Errorf("unmarshal belief record: %w", err)
	}
	if r.StrategyEffectiveness == nil {
		r.StrategyEffectiveness = make(map[domain.Strategy]domain.StrategyStats)
	}
	if r.RelationshipMap == nil {
		r.RelationshipMap = make(map[string]domain.Relationship)
	}
	return r, nil
}

var _ domain.BeliefStore = (*BeliefStore)(nil)
