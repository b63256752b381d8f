package unit

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/postgres"
)

// Runner implements port/unit.Runner with a transaction plus a transaction-
// scoped advisory lock on the prompt id. The lock serialises concurrent units
// for the same prompt and is released automatically at commit or rollback;
// the transaction makes the unit's writes atomic. Units for different prompt
// ids hash to different keys and proceed in parallel.
type Runner struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

func (r *Runner) WithPrompt(ctx context.Context, promptID uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit transaction: %w", err)
	}
	// No-op after a successful commit; context.Background() ensures rollback
	// fires even if ctx was cancelled mid-fn.
	defer tx.Rollback(context.Background()) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(promptID)); err != nil {
		return fmt.Errorf("acquire prompt advisory lock: %w", err)
	}

	if err := fn(postgres.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unit transaction: %w", err)
	}
	return nil
}

// lockKey hashes the prompt id to a stable int64 for pg_advisory_xact_lock.
func lockKey(promptID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(promptID[:])
	return int64(h.Sum64())
}
