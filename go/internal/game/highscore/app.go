package highscore

import (
	"context"

	"github.com/rs/zerolog/log"
)

// HighScoreRepository defines what the app layer needs from storage.
type HighScoreRepository interface {
	Read(ctx context.Context, key string) (int, error)
	Write(ctx context.Context, key string, value int) error
}

// App wraps a repository with the game's failure semantics: storage
// being unavailable must never break a session. A failed read counts as
// no high score (0) and a failed write is dropped. Both are logged at
// warn and nothing propagates to the caller.
type App struct {
	repo HighScoreRepository
}

// NewApp creates a new high score App.
func NewApp(repo HighScoreRepository) *App {
	return &App{
		repo: repo,
	}
}

// Read returns the stored high score, or 0 when absent or unavailable.
func (a *App) Read(ctx context.Context) int {
	value, err := a.repo.Read(ctx, StorageKey)
	if err != nil {
		log.Warn().Err(err).Str("key", StorageKey).Msg("high score read failed; treating as 0")
		return 0
	}
	if value < 0 {
		return 0
	}
	return value
}

// Write persists a new high score, best effort.
func (a *App) Write(ctx context.Context, score int) {
	if score < 0 {
		return
	}
	if err := a.repo.Write(ctx, StorageKey, score); err != nil {
		log.Warn().Err(err).Str("key", StorageKey).Int("score", score).Msg("high score write failed; dropping")
		return
	}
	log.Info().Str("key", StorageKey).Int("score", score).Msg("high score persisted")
}
