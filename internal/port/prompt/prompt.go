package prompt

import (
	"context"

	"github.com/google/uuid"

	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
)

// Repository is the storage abstraction for prompt rows.
// Postgres and in-memory implementations are both valid substitutes; the
// lifecycle service depends on this interface, not on any concrete storage.
type Repository interface {
	Create(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error)

	// GetByID returns the prompt with its denormalized tag names filled in.
	// Returns domain/prompt.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error)

	// Update rewrites the full prompt row (tag associations are owned by the
	// tag index, not by this method).
	Update(ctx context.Context, p domainprompt.Prompt) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List applies CollectionID, Search, and IDs filters with AND semantics
	// and returns prompts ordered newest-first (created_at DESC, id as the
	// tie-break) so results are deterministic. Tag filtering is resolved to
	// an IDs constraint by the caller before List is invoked.
	List(ctx context.Context, filters domainprompt.ListFilters) ([]domainprompt.Prompt, error)

	// UnlinkCollection detaches every prompt in the collection
	// (collection_id → NULL). Used when a collection is deleted.
	UnlinkCollection(ctx context.Context, collectionID uuid.UUID) error
}
