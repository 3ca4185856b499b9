package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mcdev12/clickrush/go/internal/dbconfig"
	"github.com/mcdev12/clickrush/go/internal/game/highscore"
)

// Clears the persisted high score. Useful between demos and when testing
// the new-high-score path by hand.
func main() {
	ctx := context.Background()

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := cfg.Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := highscore.NewRepository(pool)
	current, err := repo.Read(ctx, highscore.StorageKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read high score: %v\n", err)
		os.Exit(1)
	}

	if err := repo.Delete(ctx, highscore.StorageKey); err != nil {
		fmt.Fprintf(os.Stderr, "delete high score: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("cleared high score (was %d)\n", current)
}
