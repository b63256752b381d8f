package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	"github.com/promptlab/promptlab/internal/domain/event"
	portcollection "github.com/promptlab/promptlab/internal/port/collection"
	portbus "github.com/promptlab/promptlab/internal/port/eventbus"
	portprompt "github.com/promptlab/promptlab/internal/port/prompt"
)

type Service struct {
	repo       portcollection.Repository
	promptRepo portprompt.Repository
	bus        portbus.EventBus
}

func NewService(repo portcollection.Repository, promptRepo portprompt.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, promptRepo: promptRepo, bus: bus}
}

func (s *Service) Create(ctx context.Context, name, description string) (domaincollection.Collection, error) {
	c := domaincollection.New(name, description)

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domaincollection.Collection{}, fmt.Errorf("create collection: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeCollectionCreated, created.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish CollectionCreated event", "collection_id", created.ID, "error", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domaincollection.Collection, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaincollection.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]domaincollection.Collection, error) {
	collections, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// Delete removes the collection and detaches its prompts. The prompts
// themselves survive with collection_id cleared.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}
	if err := s.promptRepo.UnlinkCollection(ctx, id); err != nil {
		return fmt.Errorf("unlink prompts: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeCollectionDeleted, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish CollectionDeleted event", "collection_id", id, "error", err)
	}
	return nil
}
