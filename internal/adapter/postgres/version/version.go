package version

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/postgres"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
)

// fkViolation is the Postgres error code for foreign_key_violation — raised
// when recording a version for a prompt row that does not exist.
const fkViolation = "23503"

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record appends the next version in a single statement: the aggregate
// subselect computes max+1 over the prompt's existing history, so numbering
// stays gapless as long as writers for the same prompt are serialised by the
// unit runner.
func (s *Store) Record(ctx context.Context, promptID uuid.UUID, content string) (domainprompt.Version, error) {
	q := postgres.QuerierFrom(ctx, s.pool)
	query := `
		INSERT INTO prompt_versions (id, prompt_id, version, content, created_at)
		SELECT $1, $2, COALESCE(MAX(v.version), 0) + 1, $3, $4
		FROM prompt_versions v WHERE v.prompt_id = $2
		RETURNING id, prompt_id, version, content, created_at`

	var rec domainprompt.Version
	err := q.QueryRow(ctx, query, uuid.New(), promptID, content, time.Now().UTC()).Scan(
		&rec.ID, &rec.PromptID, &rec.Version, &rec.Content, &rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return domainprompt.Version{}, domainprompt.ErrNotFound
		}
		return domainprompt.Version{}, fmt.Errorf("recording prompt version: %w", err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, promptID uuid.UUID) ([]domainprompt.VersionMeta, error) {
	q := postgres.QuerierFrom(ctx, s.pool)
	rows, err := q.Query(ctx, `
		SELECT id, prompt_id, version, created_at
		FROM prompt_versions WHERE prompt_id = $1
		ORDER BY version`, promptID)
	if err != nil {
		return nil, fmt.Errorf("listing prompt versions: %w", err)
	}
	defer rows.Close()

	var metas []domainprompt.VersionMeta
	for rows.Next() {
		var m domainprompt.VersionMeta
		if err := rows.Scan(&m.ID, &m.PromptID, &m.Version, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version row: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating version rows: %w", err)
	}
	return metas, nil
}

func (s *Store) Get(ctx context.Context, promptID uuid.UUID, number int) (domainprompt.Version, error) {
	q := postgres.QuerierFrom(ctx, s.pool)
	var rec domainprompt.Version
	err := q.QueryRow(ctx, `
		SELECT id, prompt_id, version, content, created_at
		FROM prompt_versions WHERE prompt_id = $1 AND version = $2`, promptID, number,
	).Scan(&rec.ID, &rec.PromptID, &rec.Version, &rec.Content, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Version{}, domainprompt.ErrVersionNotFound
		}
		return domainprompt.Version{}, fmt.Errorf("querying prompt version: %w", err)
	}
	return rec, nil
}

func (s *Store) DeleteAll(ctx context.Context, promptID uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, s.pool)
	if _, err := q.Exec(ctx, `DELETE FROM prompt_versions WHERE prompt_id = $1`, promptID); err != nil {
		return fmt.Errorf("deleting prompt versions: %w", err)
	}
	return nil
}
