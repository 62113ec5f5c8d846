package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"propertybot/internal/catalog"
	"propertybot/internal/config"
	"propertybot/internal/database"
	"propertybot/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Import property listings into Postgres",
	Long: `Reads a JSON array of listings (default PROPERTIES_PATH), drops duplicate
titles and upserts the rest into the properties table keyed by title.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	path := cfg.PropertiesPath
	if len(args) == 1 {
		path = args[0]
	}

	props, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	props, dropped := catalog.Dedupe(props)
	log.Printf("✓ %d listings read from %s (%d duplicate titles dropped)", len(props), path, dropped)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}

	repo := repository.NewPropertyRepo(pool)
	for i := range props {
		if err := repo.Upsert(ctx, &props[i]); err != nil {
			return err
		}
	}
	log.Printf("✓ %d listings upserted", len(props))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
