package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/internal/domain/event"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	domaintag "github.com/promptlab/promptlab/internal/domain/tag"
	portcollection "github.com/promptlab/promptlab/internal/port/collection"
	portbus "github.com/promptlab/promptlab/internal/port/eventbus"
	portprompt "github.com/promptlab/promptlab/internal/port/prompt"
	porttag "github.com/promptlab/promptlab/internal/port/tag"
	portunit "github.com/promptlab/promptlab/internal/port/unit"
	portversion "github.com/promptlab/promptlab/internal/port/version"
)

// Service coordinates the prompt lifecycle. Every mutation runs inside a
// per-prompt unit (see port/unit.Runner), which is what keeps the version
// history gapless and the prompt row consistent with it under concurrency.
type Service struct {
	repo        portprompt.Repository
	versions    portversion.Store
	tags        porttag.Index
	collections portcollection.Repository
	unit        portunit.Runner
	bus         portbus.EventBus
}

func NewService(
	repo portprompt.Repository,
	versions portversion.Store,
	tags porttag.Index,
	collections portcollection.Repository,
	unit portunit.Runner,
	bus portbus.EventBus,
) *Service {
	return &Service{
		repo:        repo,
		versions:    versions,
		tags:        tags,
		collections: collections,
		unit:        unit,
		bus:         bus,
	}
}

type CreateParams struct {
	Title        string
	Content      string
	Description  string
	CollectionID *uuid.UUID
	Tags         []string
}

// Create stores a new prompt at version 1 together with its first history
// entry and tag associations. Returns domain/collection.ErrNotFound if the
// referenced collection does not exist.
func (s *Service) Create(ctx context.Context, params CreateParams) (domainprompt.Prompt, error) {
	p := domainprompt.New(params.Title, params.Content, params.Description, params.CollectionID)

	err := s.unit.WithPrompt(ctx, p.ID, func(ctx context.Context) error {
		if params.CollectionID != nil {
			if _, err := s.collections.GetByID(ctx, *params.CollectionID); err != nil {
				return fmt.Errorf("checking collection: %w", err)
			}
		}

		created, err := s.repo.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("create prompt: %w", err)
		}
		p = created

		if _, err := s.versions.Record(ctx, p.ID, p.Content); err != nil {
			return fmt.Errorf("record initial version: %w", err)
		}

		names, err := s.applyTags(ctx, p.ID, params.Tags)
		if err != nil {
			return err
		}
		p.Tags = names
		return nil
	})
	if err != nil {
		return domainprompt.Prompt{}, err
	}

	if err := s.bus.Publish(ctx, event.New(event.TypePromptCreated, p.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish PromptCreated event", "prompt_id", p.ID, "error", err)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("get prompt: %w", err)
	}
	return p, nil
}

// List applies collection, search, and tag filters with AND semantics. Tag
// names are folded and resolved to a prompt-id constraint up front; a tag
// that matches nothing short-circuits to an empty result rather than an
// error.
func (s *Service) List(ctx context.Context, filters domainprompt.ListFilters) ([]domainprompt.Prompt, error) {
	if folded := domaintag.FoldAll(filters.Tags); len(folded) > 0 {
		ids, err := s.tags.PromptIDsWithAllTags(ctx, folded)
		if err != nil {
			return nil, fmt.Errorf("resolve tag filter: %w", err)
		}
		if len(ids) == 0 {
			return []domainprompt.Prompt{}, nil
		}
		filters.IDs = ids
		filters.Tags = nil
	}

	prompts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

// Update applies a full or partial update. A new history entry is recorded
// only when the content actually changes; metadata-only and tag-only edits
// leave the version number alone.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params domainprompt.UpdateParams) (domainprompt.Prompt, error) {
	var updated domainprompt.Prompt

	err := s.unit.WithPrompt(ctx, id, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get prompt: %w", err)
		}

		if params.Title != nil {
			p.Title = *params.Title
		}
		if params.Description != nil {
			p.Description = *params.Description
		}
		if params.CollectionID != nil {
			if _, err := s.collections.GetByID(ctx, *params.CollectionID); err != nil {
				return fmt.Errorf("checking collection: %w", err)
			}
			p.CollectionID = params.CollectionID
		} else if params.ClearCollection {
			p.CollectionID = nil
		}

		if params.Content != nil && *params.Content != p.Content {
			p.Content = *params.Content
			v, err := s.versions.Record(ctx, id, p.Content)
			if err != nil {
				return fmt.Errorf("record version: %w", err)
			}
			p.Version = v.Version
		}

		p.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update prompt: %w", err)
		}

		if params.Tags != nil {
			names, err := s.applyTags(ctx, id, params.Tags)
			if err != nil {
				return err
			}
			p.Tags = names
		}

		updated = p
		return nil
	})
	if err != nil {
		return domainprompt.Prompt{}, err
	}

	if err := s.bus.Publish(ctx, event.New(event.TypePromptUpdated, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish PromptUpdated event", "prompt_id", id, "error", err)
	}
	return updated, nil
}

// Revert copies an old snapshot forward as a brand-new version. History is
// append-only: the old entry stays, the copy gets the next number. Reverting
// to the version that is already current returns
// domain/prompt.ErrNoOpRevert.
func (s *Service) Revert(ctx context.Context, id uuid.UUID, number int) (domainprompt.Prompt, error) {
	if number < 1 {
		return domainprompt.Prompt{}, domainprompt.ErrInvalidVersion
	}

	var reverted domainprompt.Prompt

	err := s.unit.WithPrompt(ctx, id, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get prompt: %w", err)
		}

		target, err := s.versions.Get(ctx, id, number)
		if err != nil {
			return fmt.Errorf("get target version: %w", err)
		}
		if target.Version == p.Version {
			return domainprompt.ErrNoOpRevert
		}

		v, err := s.versions.Record(ctx, id, target.Content)
		if err != nil {
			return fmt.Errorf("record reverted version: %w", err)
		}

		p.Content = target.Content
		p.Version = v.Version
		p.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update prompt: %w", err)
		}

		reverted = p
		return nil
	})
	if err != nil {
		return domainprompt.Prompt{}, err
	}

	if err := s.bus.Publish(ctx, event.New(event.TypePromptReverted, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish PromptReverted event", "prompt_id", id, "error", err)
	}
	return reverted, nil
}

// Delete removes the prompt together with its history and tag associations.
// The shared vocabulary is untouched — tags outlive the prompts that carried
// them.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.unit.WithPrompt(ctx, id, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get prompt: %w", err)
		}
		if err := s.versions.DeleteAll(ctx, id); err != nil {
			return fmt.Errorf("delete version history: %w", err)
		}
		if err := s.tags.DeleteAssociationsFor(ctx, id); err != nil {
			return fmt.Errorf("delete tag associations: %w", err)
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete prompt: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, event.New(event.TypePromptDeleted, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish PromptDeleted event", "prompt_id", id, "error", err)
	}
	return nil
}

// ListVersions returns the prompt's history metadata, oldest first. Returns
// domain/prompt.ErrNotFound for an unknown prompt rather than an empty list.
func (s *Service) ListVersions(ctx context.Context, id uuid.UUID) ([]domainprompt.VersionMeta, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("get prompt: %w", err)
	}
	metas, err := s.versions.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return metas, nil
}

func (s *Service) GetVersion(ctx context.Context, id uuid.UUID, number int) (domainprompt.Version, error) {
	if number < 1 {
		return domainprompt.Version{}, domainprompt.ErrInvalidVersion
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domainprompt.Version{}, fmt.Errorf("get prompt: %w", err)
	}
	v, err := s.versions.Get(ctx, id, number)
	if err != nil {
		return domainprompt.Version{}, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// applyTags resolves names against the vocabulary and replaces the prompt's
// association set. Returns the folded names sorted the way reads report them.
func (s *Service) applyTags(ctx context.Context, promptID uuid.UUID, names []string) ([]string, error) {
	resolved, err := s.tags.ResolveOrCreate(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	ids := make([]uuid.UUID, len(resolved))
	for i, t := range resolved {
		ids[i] = t.ID
	}
	if err := s.tags.SetAssociations(ctx, promptID, ids); err != nil {
		return nil, fmt.Errorf("set tag associations: %w", err)
	}
	return s.tags.TagsFor(ctx, promptID)
}
