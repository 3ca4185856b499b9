package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/clickrush/go/internal/dbconfig"
	"github.com/mcdev12/clickrush/go/internal/game/events"
	"github.com/mcdev12/clickrush/go/internal/game/gateway"
	"github.com/mcdev12/clickrush/go/internal/game/highscore"
	"github.com/mcdev12/clickrush/go/internal/game/session"
	"github.com/mcdev12/clickrush/go/internal/gameconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Get configuration
	port := getEnv("PORT", "8080")
	natsURL := os.Getenv("NATS_URL")
	webDir := getEnv("WEB_DIR", "web")
	cfg := gameconfig.Load(getEnv("GAME_CONFIG", "config.yaml"))

	log.Info().
		Str("port", port).
		Str("game_config", cfg.String()).
		Msg("starting clickrush server")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// High score storage: Postgres when reachable, in-process otherwise.
	// The game stays playable either way.
	scores, closeScores := setupHighScores(ctx)
	defer closeScores()

	// Optional session event publishing
	var publisher *events.JetStreamPublisher
	if natsURL != "" {
		var err error
		publisher, err = events.NewJetStreamPublisher(events.DefaultJetStreamConfig(natsURL))
		if err != nil {
			log.Warn().Err(err).Str("nats_url", natsURL).Msg("NATS unavailable; session events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Wire the game
	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	selector := session.NewSelector(cfg.DurationChoices(), cfg.DefaultDuration())
	sink := session.MultiSink{connectionManager, events.NewResultSink(publisher)}
	controller := session.NewController(
		clockwork.NewRealClock(),
		selector,
		scores,
		sink,
		cfg.TickInterval(),
	)
	wsHandler := gateway.NewWebSocketHandler(connectionManager, controller, selector)
	connectionManager.SetCommandHandler(wsHandler)

	// Start broadcast loop
	go connectionManager.Start(ctx)

	// Setup HTTP server
	server := setupServer(port, wsHandler, webDir)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Stop any running session so no ticker outlives the server
	controller.Restart(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	log.Info().Msg("clickrush shutdown complete")
}

func setupHighScores(ctx context.Context) (*highscore.App, func()) {
	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := dbCfg.Connect(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable; high scores will not survive restarts")
		return highscore.NewApp(highscore.NewMemoryStore()), func() {}
	}

	log.Info().
		Str("database", dbCfg.Database).
		Str("host", dbCfg.Host).
		Msg("connected to database")
	return highscore.NewApp(highscore.NewRepository(pool)), pool.Close
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
