// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/stairway/internal/api"
	apiconnect "github.com/osa030/stairway/internal/api/connect"
	"github.com/osa030/stairway/internal/app/enrich"
	"github.com/osa030/stairway/internal/app/recommend"
	"github.com/osa030/stairway/internal/app/workflow"
	"github.com/osa030/stairway/internal/infra/artifact"
	"github.com/osa030/stairway/internal/infra/config"
	"github.com/osa030/stairway/internal/infra/logger"
)

var (
	app        = kingpin.New("stairway-server", "stairway song recommendation server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-tracks command
	listTracksCmd = app.Command("list-tracks", "List catalog tracks and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closeLog()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Handle list-tracks command
	if command == listTracksCmd.FullCommand() {
		if err := printTracks(cfg); err != nil {
			zlog.Fatal().Msgf("Failed to list tracks: %v", err)
		}
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		closeLog()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Load precomputed artifacts
	tracks, similarity, err := artifact.Load(cfg.Catalog.TracksPath, cfg.Catalog.SimilarityPath)
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}

	engine, err := recommend.NewEngine(tracks, similarity, cfg.Recommend.Limit)
	if err != nil {
		return fmt.Errorf("failed to create recommendation engine: %w", err)
	}

	enricher, err := enrich.NewFromConfig(ctx, cfg.Enrich)
	if err != nil {
		return fmt.Errorf("failed to create metadata enricher: %w", err)
	}

	// Create RPC service
	service := apiconnect.NewRecommendationService(workflow.NewService(cfg, engine, enricher))
	router := api.NewRouter(service, func() api.HealthResponse {
		return api.HealthResponse{
			Status:  "ok",
			Tracks:  tracks.Len(),
			Sources: enricher.Sources(),
		}
	})

	// Determine server address
	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s tracks=%d", serverAddr, tracks.Len())
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printTracks prints the catalog in selection order.
func printTracks(cfg *config.Config) error {
	tracks, err := artifact.LoadCatalog(cfg.Catalog.TracksPath)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog (%d tracks):\n", tracks.Len())
	for i, name := range tracks.Names() {
		fmt.Printf("  %4d  %s\n", i, name)
	}
	return nil
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
