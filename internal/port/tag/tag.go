package tag

import (
	"context"

	"github.com/google/uuid"

	domaintag "github.com/promptlab/promptlab/internal/domain/tag"
)

// Index owns the canonical tag vocabulary and the prompt↔tag associations.
// All names crossing this boundary are folded (see domain/tag.Fold) before
// storage or comparison.
type Index interface {
	// ResolveOrCreate folds each name and returns the canonical tag rows,
	// creating any that are missing. Two concurrent writers introducing the
	// same folded name must converge on a single row. Empty input yields an
	// empty result, not an error.
	ResolveOrCreate(ctx context.Context, names []string) ([]domaintag.Tag, error)

	// SetAssociations replaces the prompt's full tag set with exactly the
	// given ids — set semantics, order irrelevant. Returns
	// domain/prompt.ErrNotFound for an unknown prompt.
	SetAssociations(ctx context.Context, promptID uuid.UUID, tagIDs []uuid.UUID) error

	// TagsFor returns the prompt's folded tag names sorted ascending.
	TagsFor(ctx context.Context, promptID uuid.UUID) ([]string, error)

	// PromptIDsWithAllTags returns prompts associated with every one of the
	// given names after folding (set intersection, not union). Names that
	// match no existing tag contribute no results, so any unknown name makes
	// the answer empty.
	PromptIDsWithAllTags(ctx context.Context, names []string) ([]uuid.UUID, error)

	// DeleteAssociationsFor removes all of the prompt's associations.
	// Idempotent — used only by cascade delete.
	DeleteAssociationsFor(ctx context.Context, promptID uuid.UUID) error
}
