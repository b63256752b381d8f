package prompt

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is the current state of a stored prompt. Content and Version are
// mutated only through versioned writes in the lifecycle service — Version
// always points at the highest entry in the prompt's version history.
type Prompt struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Description  string     `json:"description,omitempty"`
	CollectionID *uuid.UUID `json:"collection_id,omitempty"`
	Version      int        `json:"version"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func New(title, content, description string, collectionID *uuid.UUID) Prompt {
	now := time.Now().UTC()
	return Prompt{
		ID:           uuid.New(),
		Title:        title,
		Content:      content,
		Description:  description,
		CollectionID: collectionID,
		Version:      1,
		Tags:         []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Version is one immutable snapshot in a prompt's append-only history.
// Numbers start at 1 and are strictly sequential per prompt — a revert appends
// a new number rather than reusing an old one.
type Version struct {
	ID        uuid.UUID `json:"id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// VersionMeta is the list view of a version — everything except the content
// snapshot, so history listings stay small.
type VersionMeta struct {
	ID        uuid.UUID `json:"id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type ListFilters struct {
	CollectionID *uuid.UUID
	Search       string   // case-insensitive substring over title OR content
	Tags         []string // prompt must carry every tag (folded)
	IDs          []uuid.UUID
}

// UpdateParams carries a full or partial update. Nil fields are left
// untouched — PUT and PATCH differ only in how many fields the transport
// fills in, not in code path.
type UpdateParams struct {
	Title           *string
	Content         *string
	Description     *string
	CollectionID    *uuid.UUID
	ClearCollection bool // PUT with no collection_id detaches the prompt
	Tags            []string
}
