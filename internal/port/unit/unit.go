package unit

import (
	"context"

	"github.com/google/uuid"
)

// Runner serialises and atomically applies a multi-step mutation on one
// prompt. All writes performed inside fn become visible together or not at
// all, and two concurrent units for the same prompt id never interleave —
// this is what keeps version numbering gapless and the current-version
// pointer consistent. Units for different prompt ids do not block each other.
//
// The Postgres implementation wraps fn in a transaction holding
// pg_advisory_xact_lock on a hash of the prompt id; the in-memory
// implementation holds a per-prompt mutex.
type Runner interface {
	WithPrompt(ctx context.Context, promptID uuid.UUID, fn func(ctx context.Context) error) error
}
