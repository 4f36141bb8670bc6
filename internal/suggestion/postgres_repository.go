package suggestion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS suggestions (
		id         UUID PRIMARY KEY,
		type       TEXT NOT NULL,
		details    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL suggestion repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the suggestions table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create suggestions table: %w", err)
	}
	return nil
}

// List returns up to limit suggestions, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, type, details, created_at
		FROM suggestions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Suggestion{}
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.Type, &s.Details, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// Create stores a suggestion. A suggestion whose ID is already stored is
// ignored.
func (r *PostgresRepository) Create(ctx context.Context, s Suggestion) error {
	query := `
		INSERT INTO suggestions (id, type, details, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Type, s.Details, s.CreatedAt)
	return err
}

var _ Repository = (*PostgresRepository)(nil)
