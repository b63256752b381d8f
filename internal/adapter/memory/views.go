package memory

import (
	"context"

	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
)

// The store holds every entity behind one lock, but the ports are separate
// interfaces with overlapping method names. These views expose the same
// store under each port's method set.

// Versions returns the store as a port/version.Store.
func (s *Store) Versions() *VersionStore { return &VersionStore{s: s} }

type VersionStore struct {
	s *Store
}

func (vs *VersionStore) Record(ctx context.Context, promptID uuid.UUID, content string) (domainprompt.Version, error) {
	return vs.s.Record(ctx, promptID, content)
}

func (vs *VersionStore) List(ctx context.Context, promptID uuid.UUID) ([]domainprompt.VersionMeta, error) {
	return vs.s.ListVersions(ctx, promptID)
}

func (vs *VersionStore) Get(ctx context.Context, promptID uuid.UUID, number int) (domainprompt.Version, error) {
	return vs.s.GetVersion(ctx, promptID, number)
}

func (vs *VersionStore) DeleteAll(ctx context.Context, promptID uuid.UUID) error {
	return vs.s.DeleteAllVersions(ctx, promptID)
}

// Collections returns the store as a port/collection.Repository.
func (s *Store) Collections() *CollectionRepository { return &CollectionRepository{s: s} }

type CollectionRepository struct {
	s *Store
}

func (cr *CollectionRepository) Create(ctx context.Context, c domaincollection.Collection) (domaincollection.Collection, error) {
	return cr.s.CreateCollection(ctx, c)
}

func (cr *CollectionRepository) GetByID(ctx context.Context, id uuid.UUID) (domaincollection.Collection, error) {
	return cr.s.GetCollectionByID(ctx, id)
}

func (cr *CollectionRepository) List(ctx context.Context) ([]domaincollection.Collection, error) {
	return cr.s.ListCollections(ctx)
}

func (cr *CollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return cr.s.DeleteCollection(ctx, id)
}
