package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/postgres"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
)

// tagNamesExpr denormalizes the prompt's tag set into the row so read paths
// never need a second round trip.
const tagNamesExpr = `COALESCE(
		(SELECT array_agg(t.name ORDER BY t.name)
		 FROM prompt_tags pt JOIN tags t ON t.id = pt.tag_id
		 WHERE pt.prompt_id = p.id),
		'{}')`

const promptColumns = `p.id, p.title, p.content, p.description, p.collection_id,
		p.version, ` + tagNamesExpr + `, p.created_at, p.updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		INSERT INTO prompts (id, title, content, description, collection_id, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, title, content, description, collection_id, version, created_at, updated_at`

	var created domainprompt.Prompt
	err := q.QueryRow(ctx, query,
		p.ID, p.Title, p.Content, p.Description, p.CollectionID, p.Version, p.CreatedAt, p.UpdatedAt,
	).Scan(
		&created.ID, &created.Title, &created.Content, &created.Description,
		&created.CollectionID, &created.Version, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("inserting prompt: %w", err)
	}
	created.Tags = []string{}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainprompt.Prompt, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `SELECT ` + promptColumns + ` FROM prompts p WHERE p.id = $1`

	p, err := scanPrompt(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Prompt{}, domainprompt.ErrNotFound
		}
		return domainprompt.Prompt{}, fmt.Errorf("querying prompt: %w", err)
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, p domainprompt.Prompt) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		UPDATE prompts SET
			title = $2, content = $3, description = $4, collection_id = $5,
			version = $6, updated_at = $7
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, p.ID, p.Title, p.Content, p.Description, p.CollectionID, p.Version, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating prompt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainprompt.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainprompt.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filters domainprompt.ListFilters) ([]domainprompt.Prompt, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `SELECT ` + promptColumns + ` FROM prompts p WHERE 1=1`

	args := []any{}
	argIdx := 1

	if filters.CollectionID != nil {
		query += fmt.Sprintf(" AND p.collection_id = $%d", argIdx)
		args = append(args, *filters.CollectionID)
		argIdx++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND (p.title ILIKE $%d OR p.content ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}
	if filters.IDs != nil {
		query += fmt.Sprintf(" AND p.id = ANY($%d)", argIdx)
		args = append(args, filters.IDs)
		argIdx++
	}

	query += " ORDER BY p.created_at DESC, p.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	defer rows.Close()

	var prompts []domainprompt.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prompt row: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompt rows: %w", err)
	}
	return prompts, nil
}

func (r *Repository) UnlinkCollection(ctx context.Context, collectionID uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `
		UPDATE prompts SET collection_id = NULL, updated_at = NOW()
		WHERE collection_id = $1`, collectionID)
	if err != nil {
		return fmt.Errorf("unlinking prompts from collection %s: %w", collectionID, err)
	}
	return nil
}

func scanPrompt(row pgx.Row) (domainprompt.Prompt, error) {
	var p domainprompt.Prompt
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Description, &p.CollectionID,
		&p.Version, &p.Tags, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}
