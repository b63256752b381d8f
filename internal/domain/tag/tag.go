package tag

import (
	"strings"

	"github.com/google/uuid"
)

// Tag is an entry in the canonical tag vocabulary. Name is always stored
// folded (lowercase, trimmed) — folding happens once at write time so queries
// are plain equality over already-normalized keys.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Fold canonicalizes a tag name: differently-cased spellings of the same tag
// map to one vocabulary entry.
func Fold(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FoldAll folds every name, dropping empties and duplicates while preserving
// first-seen order.
func FoldAll(names []string) []string {
	folded := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		f := Fold(n)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		folded = append(folded, f)
	}
	return folded
}
