package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	domaintag "github.com/promptlab/promptlab/internal/domain/tag"
)

// Store is an in-memory implementation of every storage port. It backs the
// server when no DATABASE_URL is configured and doubles as the test fixture
// for the service and transport layers.
//
// A single RWMutex guards all maps. Individual operations are therefore
// atomic on their own; multi-step units additionally hold the per-prompt
// mutex handed out by WithPrompt, which is what serialises concurrent
// lifecycle mutations on the same prompt.
type Store struct {
	mu          sync.RWMutex
	prompts     map[uuid.UUID]domainprompt.Prompt
	versions    map[uuid.UUID][]domainprompt.Version
	collections map[uuid.UUID]domaincollection.Collection
	tagsByName  map[string]domaintag.Tag
	tagsByID    map[uuid.UUID]domaintag.Tag
	promptTags  map[uuid.UUID]map[uuid.UUID]struct{}

	lockMu      sync.Mutex
	promptLocks map[uuid.UUID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		prompts:     make(map[uuid.UUID]domainprompt.Prompt),
		versions:    make(map[uuid.UUID][]domainprompt.Version),
		collections: make(map[uuid.UUID]domaincollection.Collection),
		tagsByName:  make(map[string]domaintag.Tag),
		tagsByID:    make(map[uuid.UUID]domaintag.Tag),
		promptTags:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		promptLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// WithPrompt implements port/unit.Runner with a per-prompt mutex. Lock
// entries are never reclaimed; the map grows with the number of distinct
// prompts mutated, which is fine for an in-process backend.
func (s *Store) WithPrompt(ctx context.Context, promptID uuid.UUID, fn func(ctx context.Context) error) error {
	s.lockMu.Lock()
	lock, ok := s.promptLocks[promptID]
	if !ok {
		lock = &sync.Mutex{}
		s.promptLocks[promptID] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

// --- prompt.Repository ---

func (s *Store) Create(_ context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	s.mu.Lock()
	s.prompts[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (domainprompt.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prompts[id]
	if !ok {
		return domainprompt.Prompt{}, domainprompt.ErrNotFound
	}
	p.Tags = s.tagNamesLocked(id)
	return p, nil
}

func (s *Store) Update(_ context.Context, p domainprompt.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[p.ID]; !ok {
		return domainprompt.ErrNotFound
	}
	s.prompts[p.ID] = p
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[id]; !ok {
		return domainprompt.ErrNotFound
	}
	delete(s.prompts, id)
	return nil
}

func (s *Store) List(_ context.Context, filters domainprompt.ListFilters) ([]domainprompt.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var idSet map[uuid.UUID]struct{}
	if filters.IDs != nil {
		idSet = make(map[uuid.UUID]struct{}, len(filters.IDs))
		for _, id := range filters.IDs {
			idSet[id] = struct{}{}
		}
	}
	search := strings.ToLower(filters.Search)

	matched := []domainprompt.Prompt{}
	for id, p := range s.prompts {
		if idSet != nil {
			if _, ok := idSet[id]; !ok {
				continue
			}
		}
		if filters.CollectionID != nil {
			if p.CollectionID == nil || *p.CollectionID != *filters.CollectionID {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		p.Tags = s.tagNamesLocked(id)
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})
	return matched, nil
}

func (s *Store) UnlinkCollection(_ context.Context, collectionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.prompts {
		if p.CollectionID != nil && *p.CollectionID == collectionID {
			p.CollectionID = nil
			s.prompts[id] = p
		}
	}
	return nil
}

// --- version.Store ---

func (s *Store) Record(_ context.Context, promptID uuid.UUID, content string) (domainprompt.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[promptID]; !ok {
		return domainprompt.Version{}, domainprompt.ErrNotFound
	}

	history := s.versions[promptID]
	next := 1
	if n := len(history); n > 0 {
		next = history[n-1].Version + 1
	}
	v := domainprompt.Version{
		ID:        uuid.New(),
		PromptID:  promptID,
		Version:   next,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.versions[promptID] = append(history, v)
	return v, nil
}

func (s *Store) ListVersions(_ context.Context, promptID uuid.UUID) ([]domainprompt.VersionMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.versions[promptID]
	metas := make([]domainprompt.VersionMeta, 0, len(history))
	for _, v := range history {
		metas = append(metas, domainprompt.VersionMeta{
			ID:        v.ID,
			PromptID:  v.PromptID,
			Version:   v.Version,
			CreatedAt: v.CreatedAt,
		})
	}
	return metas, nil
}

func (s *Store) GetVersion(_ context.Context, promptID uuid.UUID, number int) (domainprompt.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions[promptID] {
		if v.Version == number {
			return v, nil
		}
	}
	return domainprompt.Version{}, domainprompt.ErrVersionNotFound
}

func (s *Store) DeleteAllVersions(_ context.Context, promptID uuid.UUID) error {
	s.mu.Lock()
	delete(s.versions, promptID)
	s.mu.Unlock()
	return nil
}

// --- tag.Index ---

func (s *Store) ResolveOrCreate(_ context.Context, names []string) ([]domaintag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folded := domaintag.FoldAll(names)
	tags := make([]domaintag.Tag, 0, len(folded))
	for _, name := range folded {
		t, ok := s.tagsByName[name]
		if !ok {
			t = domaintag.Tag{ID: uuid.New(), Name: name}
			s.tagsByName[name] = t
			s.tagsByID[t.ID] = t
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (s *Store) SetAssociations(_ context.Context, promptID uuid.UUID, tagIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[promptID]; !ok {
		return domainprompt.ErrNotFound
	}

	set := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		set[id] = struct{}{}
	}
	s.promptTags[promptID] = set
	return nil
}

func (s *Store) TagsFor(_ context.Context, promptID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagNamesLocked(promptID), nil
}

func (s *Store) PromptIDsWithAllTags(_ context.Context, names []string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folded := domaintag.FoldAll(names)
	if len(folded) == 0 {
		return nil, nil
	}

	wanted := make(map[uuid.UUID]struct{}, len(folded))
	for _, name := range folded {
		t, ok := s.tagsByName[name]
		if !ok {
			// Unknown vocabulary entry: nothing can carry it.
			return nil, nil
		}
		wanted[t.ID] = struct{}{}
	}

	var ids []uuid.UUID
	for promptID, assoc := range s.promptTags {
		all := true
		for tagID := range wanted {
			if _, ok := assoc[tagID]; !ok {
				all = false
				break
			}
		}
		if all {
			ids = append(ids, promptID)
		}
	}
	return ids, nil
}

func (s *Store) DeleteAssociationsFor(_ context.Context, promptID uuid.UUID) error {
	s.mu.Lock()
	delete(s.promptTags, promptID)
	s.mu.Unlock()
	return nil
}

// --- collection.Repository ---

func (s *Store) CreateCollection(_ context.Context, c domaincollection.Collection) (domaincollection.Collection, error) {
	s.mu.Lock()
	s.collections[c.ID] = c
	s.mu.Unlock()
	return c, nil
}

func (s *Store) GetCollectionByID(_ context.Context, id uuid.UUID) (domaincollection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[id]
	if !ok {
		return domaincollection.Collection{}, domaincollection.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCollections(_ context.Context) ([]domaincollection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collections := make([]domaincollection.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		collections = append(collections, c)
	}
	sort.Slice(collections, func(i, j int) bool {
		if !collections[i].CreatedAt.Equal(collections[j].CreatedAt) {
			return collections[i].CreatedAt.After(collections[j].CreatedAt)
		}
		return bytes.Compare(collections[i].ID[:], collections[j].ID[:]) < 0
	})
	return collections, nil
}

func (s *Store) DeleteCollection(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[id]; !ok {
		return domaincollection.ErrNotFound
	}
	delete(s.collections, id)
	return nil
}

// tagNamesLocked returns the prompt's folded tag names sorted ascending.
// Callers must hold s.mu.
func (s *Store) tagNamesLocked(promptID uuid.UUID) []string {
	names := []string{}
	for tagID := range s.promptTags[promptID] {
		if t, ok := s.tagsByID[tagID]; ok {
			names = append(names, t.Name)
		}
	}
	sort.Strings(names)
	return names
}
