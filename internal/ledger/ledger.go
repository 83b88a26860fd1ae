// Package ledger provides implementations of the external value-ledger
// collaborator. Settlement logic lives entirely on the ledger side; the
// core only issues intents.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/agora-arena/agora/internal/domain"
)

// InMemory is a process-local ledger used for tests and mock-chain runs.
// Escrow ids are sequential and deterministic.
type InMemory struct {
	mu sync.Mutex

	entered map[int]bool
	stakes  map[int]map[domain.BeliefID]int64

	nextDebateID int64
	escrows      map[int64]*escrow

	// Verdicts records every submitted verdict, for assertions.
	Verdicts map[int64]string
	// Migrations records belief migrations in order, for assertions.
	Migrations []Migration
}

type escrow struct {
	challengerID int
	challengedID int
	amount       int64
	matched      bool
	declined     bool
}

// Migration is one recorded stake migration.
type Migration struct {
	From    domain.BeliefID
	To      domain.BeliefID
	AgentID int
}

func NewInMemory() *InMemory {
	return &InMemory{
		entered:      make(map[int]bool),
		stakes:       make(map[int]map[domain.BeliefID]int64),
		nextDebateID: 1,
		escrows:      make(map[int64]*escrow),
		Verdicts:     make(map[int64]string),
	}
}

func (l *InMemory) EnterPool(ctx context.Context, agentID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entered[agentID] {
		return fmt.Errorf("ledger: agent %d already entered", agentID)
	}
	l.entered[agentID] = true
	return nil
}

func (l *InMemory) Stake(ctx context.Context, beliefID domain.BeliefID, agentID int, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.entered[agentID] {
		return fmt.Errorf("ledger: agent %d has not entered the pool", agentID)
	}
	if l.stakes[agentID] == nil {
		l.stakes[agentID] = make(map[domain.BeliefID]int64)
	}
	l.stakes[agentID][beliefID] += amount
	return nil
}

func (l *InMemory) CreateEscrow(ctx context.Context, challengerID, challengedID int, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextDebateID
	l.nextDebateID++
	l.escrows[id] = &escrow{
		challengerID: challengerID,
		challengedID: challengedID,
		amount:       amount,
	}
	return id, nil
}

func (l *InMemory) MatchEscrow(ctx context.Context, debateID int64, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.escrows[debateID]
	if !ok {
		return fmt.Errorf("ledger: unknown escrow %d", debateID)
	}
	if e.declined {
		return fmt.Errorf("ledger: escrow %d was declined", debateID)
	}
	if amount != e.amount {
		return fmt.Errorf("ledger: escrow %d expects %d, got %d", debateID, e.amount, amount)
	}
	e.matched = true
	return nil
}

func (l *InMemory) DeclineEscrow(ctx context.Context, debateID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.escrows[debateID]
	if !ok {
		return fmt.Errorf("ledger: unknown escrow %d", debateID)
	}
	e.declined = true
	return nil
}

func (l *InMemory) SubmitVerdict(ctx context.Context, debateID int64, verdict string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.escrows[debateID]; !ok {
		return fmt.Errorf("ledger: unknown escrow %d", debateID)
	}
	l.Verdicts[debateID] = verdict
	return nil
}

func (l *InMemory) MigrateStake(ctx context.Context, from, to domain.BeliefID, agentID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	staked := l.stakes[agentID][from]
	if staked > 0 {
		l.stakes[agentID][from] = 0
		l.stakes[agentID][to] += staked
	}
	l.Migrations = append(l.Migrations, Migration{From: from, To: to, AgentID: agentID})
	return nil
}

func (l *InMemory) HasEntered(ctx context.Context, agentID int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entered[agentID], nil
}

func (l *InMemory) StakeInfo(ctx context.Context, agentID int, beliefID domain.BeliefID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stakes[agentID][beliefID], nil
}

var _ domain.Ledger = (*InMemory)(nil)
