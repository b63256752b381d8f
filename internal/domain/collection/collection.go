package collection

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("collection not found")

// Collection groups prompts. Deleting a collection detaches its prompts
// rather than deleting them.
type Collection struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func New(name, description string) Collection {
	return Collection{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
