package version

import (
	"context"

	"github.com/google/uuid"

	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
)

// Store owns the append-only version history of prompt content.
type Store interface {
	// Record appends a new version numbered max+1 (1 if the prompt has no
	// history yet). Returns domain/prompt.ErrNotFound if the prompt row does
	// not exist.
	Record(ctx context.Context, promptID uuid.UUID, content string) (domainprompt.Version, error)

	// List returns version metadata ordered by version number ascending.
	// Content is not included in the list view.
	List(ctx context.Context, promptID uuid.UUID) ([]domainprompt.VersionMeta, error)

	// Get returns one version with its full content snapshot. Returns
	// domain/prompt.ErrVersionNotFound if that number does not exist.
	Get(ctx context.Context, promptID uuid.UUID, number int) (domainprompt.Version, error)

	// DeleteAll removes the prompt's entire history. Idempotent — used only
	// by cascade delete.
	DeleteAll(ctx context.Context, promptID uuid.UUID) error
}
