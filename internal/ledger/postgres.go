package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agora-arena/agora/internal/domain"
)

// Postgres is the shared ledger used when every agent process points at
// the same database. Escrow ids come from a bigserial, so debate ids
// are globally unique across processes.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (l *Postgres) EnterPool(ctx context.Context, agentID int) error {
	tag, err := l.db.Exec(ctx,
		`INSERT INTO ledger_entries (agent_id) VALUES ($1)
		 ON CONFLICT (agent_id) DO NOTHING`,
		agentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: agent %d already entered", agentID)
	}
	return nil
}

func (l *Postgres) Stake(ctx context.Context, beliefID domain.BeliefID, agentID int, amount int64) error {
	entered, err := l.HasEntered(ctx, agentID)
	if err != nil {
		return err
	}
	if !entered {
		return fmt.Errorf("ledger: agent %d has not entered the pool", agentID)
	}

	_, err = l.db.Exec(ctx,
		`INSERT INTO ledger_stakes (agent_id, belief_id, amount)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (agent_id, belief_id) DO UPDATE
		 SET amount = ledger_stakes.amount + $3`,
		agentID, int(beliefID), amount,
	)
	return err
}

func (l *Postgres) CreateEscrow(ctx context.Context, challengerID, challengedID int, amount int64) (int64, error) {
	var id int64
	err := l.db.QueryRow(ctx,
		`INSERT INTO ledger_escrows (challenger_id, challenged_id, amount)
		 VALUES ($1, $2, $3)
		 RETURNING debate_id`,
		challengerID, challengedID, amount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Postgres) MatchEscrow(ctx context.Context, debateID int64, amount int64) error {
	var (
		expected int64
		declined bool
	)
	err := l.db.QueryRow(ctx,
		`SELECT amount, declined FROM ledger_escrows WHERE debate_id = $1`,
		debateID,
	).Scan(&expected, &declined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ledger: unknown escrow %d", debateID)
		}
		return err
	}
	if declined {
		return fmt.Errorf("ledger: escrow %d was declined", debateID)
	}
	if amount != expected {
		return fmt.Errorf("ledger: escrow %d expects %d, got %d", debateID, expected, amount)
	}

	_, err = l.db.Exec(ctx,
		`UPDATE ledger_escrows SET matched = TRUE WHERE debate_id = $1`,
		debateID,
	)
	return err
}

func (l *Postgres) DeclineEscrow(ctx context.Context, debateID int64) error {
	tag, err := l.db.Exec(ctx,
		`UPDATE ledger_escrows SET declined = TRUE WHERE debate_id = $1`,
		debateID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: unknown escrow %d", debateID)
	}
	return nil
}

func (l *Postgres) SubmitVerdict(ctx context.Context, debateID int64, verdict string) error {
	tag, err := l.db.Exec(ctx,
		`UPDATE ledger_escrows SET verdict = $2 WHERE debate_id = $1`,
		debateID, verdict,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: unknown escrow %d", debateID)
	}
	return nil
}

func (l *Postgres) MigrateStake(ctx context.Context, from, to domain.BeliefID, agentID int) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var staked int64
	err = tx.QueryRow(ctx,
		`SELECT amount FROM ledger_stakes WHERE agent_id = $1 AND belief_id = $2 FOR UPDATE`,
		agentID, int(from),
	).Scan(&staked)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if staked > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE ledger_stakes SET amount = 0 WHERE agent_id = $1 AND belief_id = $2`,
			agentID, int(from),
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO ledger_stakes (agent_id, belief_id, amount)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (agent_id, belief_id) DO UPDATE
			 SET amount = ledger_stakes.amount + $3`,
			agentID, int(to), staked,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_migrations (agent_id, from_belief, to_belief)
		 VALUES ($1, $2, $3)`,
		agentID, int(from), int(to),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (l *Postgres) HasEntered(ctx context.Context, agentID int) (bool, error) {
	var entered bool
	err := l.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE agent_id = $1)`,
		agentID,
	).Scan(&entered)
	return entered, err
}

func (l *Postgres) StakeInfo(ctx context.Context, agentID int, beliefID domain.BeliefID) (int64, error) {
	var amount int64
	err := l.db.QueryRow(ctx,
		`SELECT amount FROM ledger_stakes WHERE agent_id = $1 AND belief_id = $2`,
		agentID, int(beliefID),
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return amount, nil
}

var _ domain.Ledger = (*Postgres)(nil)
