package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/memora-app/memora/internal/catalog"
	"github.com/memora-app/memora/internal/config"
	"github.com/memora-app/memora/internal/database/postgres"
	"github.com/memora-app/memora/internal/web/middleware"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the built-in practice identities into the database",
	Long: `Import the built-in practice catalog into PostgreSQL so the sample
identities survive as regular records and can be edited per user.
Existing records with the same IDs are overwritten.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("user", middleware.DefaultUser, "User scope to register the identities under")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userID := mustGetString(cmd, "user")
	samples := catalog.SampleIdentities(cfg.Training.SampleCatalog)
	if len(samples) == 0 {
		return errors.New("embedded practice catalog is empty")
	}

	repo := postgres.NewIdentityRepository(pool)
	bar := progressbar.Default(int64(len(samples)), "Seeding identities")

	now := time.Now().UTC()
	for _, sample := range samples {
		sample.UserID = userID
		sample.CreatedAt = now
		sample.UpdatedAt = now
		if err := repo.Upsert(ctx, &sample); err != nil {
			return fmt.Errorf("seeding %s: %w", sample.Name, err)
		}
		bar.Add(1)
	}

	fmt.Printf("Seeded %d practice identities for user %q\n", len(samples), userID)
	return nil
}
