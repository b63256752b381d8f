package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/postgres"
	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, c domaincollection.Collection) (domaincollection.Collection, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO collections (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return domaincollection.Collection{}, fmt.Errorf("inserting collection: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaincollection.Collection, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var c domaincollection.Collection
	err := q.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM collections WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domaincollection.Collection{}, domaincollection.ErrNotFound
		}
		return domaincollection.Collection{}, fmt.Errorf("querying collection: %w", err)
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context) ([]domaincollection.Collection, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, name, description, created_at
		FROM collections
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	collections := []domaincollection.Collection{}
	for rows.Next() {
		var c domaincollection.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domaincollection.ErrNotFound
	}
	return nil
}
