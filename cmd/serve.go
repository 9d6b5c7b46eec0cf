package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memora-app/memora/internal/catalog"
	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/cues"
	"github.com/memora-app/memora/internal/database"
	"github.com/memora-app/memora/internal/database/postgres"
	"github.com/memora-app/memora/internal/stimulus"
	"github.com/memora-app/memora/internal/training"
	"github.com/memora-app/memora/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the training API server",
	Long: `Start the Memora API server.
The server exposes identity management, exercise generation, progress
tracking and memory cue endpoints for the training frontend.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initIdentityIndex warms the in-memory similarity index from stored
// embeddings so high-level exercises can pick look-alike distractors.
func initIdentityIndex(ctx context.Context, repo *postgres.IdentityRepository) *database.IdentityIndex {
	index := database.NewIdentityIndex()

	embedded, err := repo.ListEmbedded(ctx)
	if err != nil {
		fmt.Printf("Warning: failed to warm similarity index: %v\n", err)
		fmt.Printf("Look-alike distractors will fall back to random sampling\n")
		return index
	}
	index.Build(embedded)
	fmt.Printf("Similarity index built with %d embedded identities\n", index.Count())
	return index
}

// selectCueProvider picks the cue backend from the configured credentials:
// OpenAI first, then Gemini, then the offline template generator.
func selectCueProvider(ctx context.Context, cfg *config.Config) cues.Provider {
	if cfg.OpenAI.Token != "" {
		fmt.Printf("Memory cues: OpenAI\n")
		return cues.NewOpenAIProvider(cfg.OpenAI.Token)
	}
	if cfg.Gemini.APIKey != "" {
		provider, err := cues.NewGeminiProvider(ctx, cfg.Gemini.APIKey)
		if err != nil {
			fmt.Printf("Warning: Gemini client failed to initialize: %v\n", err)
		} else {
			fmt.Printf("Memory cues: Gemini\n")
			return provider
		}
	}
	fmt.Printf("Memory cues: offline templates (no AI credentials configured)\n")
	return cues.NewTemplateProvider(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	identityRepo := postgres.NewIdentityRepository(pool)
	progressRepo := postgres.NewProgressRepository(pool)
	index := initIdentityIndex(ctx, identityRepo)

	samples := catalog.SampleIdentities(cfg.Training.SampleCatalog)
	exerciseCatalog := catalog.NewFallbackCatalog(catalog.NewStoreCatalog(identityRepo), samples)
	fmt.Printf("Practice catalog ready with %d built-in identities\n", len(samples))

	difficulty := training.NewDifficultyManager(cfg.Training.Thresholds)
	generator := training.NewGenerator(
		exerciseCatalog,
		stimulus.NewHTTPProvider(&cfg.Stimulus),
		index,
		difficulty,
		&cfg.Training,
	)
	tracker := training.NewTracker(progressRepo, difficulty, cfg.Training.TotalLessons)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, web.Dependencies{
		Generator:      generator,
		Tracker:        tracker,
		IdentityReader: identityRepo,
		IdentityWriter: identityRepo,
		Index:          index,
		Cues:           selectCueProvider(ctx, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Memora API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
