package highscore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StorageKey is the single well-known key the game persists under.
const StorageKey = "clickSpeedHighScore"

// Repository stores the high score scalar in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// Read returns the stored high score for the given key. A missing row is
// not an error; it reports 0.
func (r *Repository) Read(ctx context.Context, key string) (int, error) {
	var value int
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM high_scores WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read high score: %w", err)
	}
	return value, nil
}

// Write upserts the high score. GREATEST guards against regressions if
// two servers race on the same key.
func (r *Repository) Write(ctx context.Context, key string, value int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO high_scores (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE
		 SET value = GREATEST(high_scores.value, EXCLUDED.value), updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write high score: %w", err)
	}
	return nil
}

// Delete removes the stored high score for the given key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM high_scores WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete high score: %w", err)
	}
	return nil
}
