package tag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/postgres"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	domaintag "github.com/promptlab/promptlab/internal/domain/tag"
)

const fkViolation = "23503"

type Index struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Index {
	return &Index{pool: pool}
}

// ResolveOrCreate upserts each folded name. The DO UPDATE arm is a no-op
// rewrite of the same name, but it makes RETURNING yield the existing row —
// the loser of a concurrent insert race gets the winner's id instead of an
// error, which is what keeps the vocabulary unique under concurrent writers.
func (i *Index) ResolveOrCreate(ctx context.Context, names []string) ([]domaintag.Tag, error) {
	q := postgres.QuerierFrom(ctx, i.pool)
	folded := domaintag.FoldAll(names)

	tags := make([]domaintag.Tag, 0, len(folded))
	for _, name := range folded {
		var t domaintag.Tag
		err := q.QueryRow(ctx, `
			INSERT INTO tags (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name`, uuid.New(), name,
		).Scan(&t.ID, &t.Name)
		if err != nil {
			return nil, fmt.Errorf("resolving tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (i *Index) SetAssociations(ctx context.Context, promptID uuid.UUID, tagIDs []uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, i.pool)

	if _, err := q.Exec(ctx, `
		DELETE FROM prompt_tags
		WHERE prompt_id = $1 AND NOT (tag_id = ANY($2))`, promptID, tagIDs); err != nil {
		return fmt.Errorf("removing stale tag associations: %w", err)
	}

	for _, tagID := range tagIDs {
		_, err := q.Exec(ctx, `
			INSERT INTO prompt_tags (prompt_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, promptID, tagID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
				return domainprompt.ErrNotFound
			}
			return fmt.Errorf("adding tag association: %w", err)
		}
	}
	return nil
}

func (i *Index) TagsFor(ctx context.Context, promptID uuid.UUID) ([]string, error) {
	q := postgres.QuerierFrom(ctx, i.pool)
	rows, err := q.Query(ctx, `
		SELECT t.name FROM prompt_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.prompt_id = $1
		ORDER BY t.name`, promptID)
	if err != nil {
		return nil, fmt.Errorf("querying prompt tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PromptIDsWithAllTags intersects: a prompt qualifies only when it matches as
// many distinct vocabulary entries as there are requested names, so any name
// absent from the vocabulary empties the result.
func (i *Index) PromptIDsWithAllTags(ctx context.Context, names []string) ([]uuid.UUID, error) {
	q := postgres.QuerierFrom(ctx, i.pool)
	folded := domaintag.FoldAll(names)
	if len(folded) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `
		SELECT pt.prompt_id FROM prompt_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.name = ANY($1)
		GROUP BY pt.prompt_id
		HAVING COUNT(DISTINCT t.name) = $2`, folded, len(folded))
	if err != nil {
		return nil, fmt.Errorf("querying prompts by tags: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning prompt id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (i *Index) DeleteAssociationsFor(ctx context.Context, promptID uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, i.pool)
	if _, err := q.Exec(ctx, `DELETE FROM prompt_tags WHERE prompt_id = $1`, promptID); err != nil {
		return fmt.Errorf("deleting tag associations: %w", err)
	}
	return nil
}
