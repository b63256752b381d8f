package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePromptCreated     Type = "prompt_created"
	TypePromptUpdated     Type = "prompt_updated"
	TypePromptReverted    Type = "prompt_reverted"
	TypePromptDeleted     Type = "prompt_deleted"
	TypeCollectionCreated Type = "collection_created"
	TypeCollectionDeleted Type = "collection_deleted"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelPrompt     Channel = "prompt"
	ChannelCollection Channel = "collection"
)

var typeToChannel = map[Type]Channel{
	TypePromptCreated:     ChannelPrompt,
	TypePromptUpdated:     ChannelPrompt,
	TypePromptReverted:    ChannelPrompt,
	TypePromptDeleted:     ChannelPrompt,
	TypeCollectionCreated: ChannelCollection,
	TypeCollectionDeleted: ChannelCollection,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
