package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"julenisse/app"
	"julenisse/config"
	"julenisse/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DeedEntry is one line of the import file:
//
//	- name: Ola
//	  deed: Hjalp bestemor med å bære posene
type DeedEntry struct {
	Name string `yaml:"name"`
	Deed string `yaml:"deed"`
}

type deedRecorder interface {
	RecordDeed(ctx context.Context, name, deed string) (*models.DeedResult, error)
}

func main() {
	var sqlitePath string

	cmd := &cobra.Command{
		Use:   "importdeeds FILE",
		Short: "Judge and record a YAML list of deeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], sqlitePath)
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "store reputations in this SQLite file instead of Postgres")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path, sqlitePath string) error {
	log.Printf("[INFO] Starting deed import from %s", path)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if sqlitePath != "" {
		cfg.DatabaseDriver = config.DriverSQLite
		cfg.DatabaseURL = sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open deed file: %w", err)
	}
	defer file.Close()

	entries, err := loadDeeds(file)
	if err != nil {
		return err
	}
	log.Printf("[INFO] Read %d deeds", len(entries))

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	recorded, failed := importDeeds(ctx, application.Reputations, entries)
	log.Printf("[INFO] Deed import completed: %d recorded, %d failed", recorded, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d deeds could not be recorded", failed, len(entries))
	}
	return nil
}

func loadDeeds(r io.Reader) ([]DeedEntry, error) {
	var entries []DeedEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse deed file: %w", err)
	}
	return entries, nil
}

// importDeeds records entries one at a time and keeps going past failures.
func importDeeds(ctx context.Context, recorder deedRecorder, entries []DeedEntry) (recorded, failed int) {
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		log.Printf("[INFO] Processing deed %d/%d for %s", i+1, len(entries), name)

		result, err := recorder.RecordDeed(ctx, name, entry.Deed)
		if err != nil {
			log.Printf("[ERROR] Failed to record deed for %s: %v", name, err)
			failed++
			continue
		}

		log.Printf("[INFO] %s scored %d, total %d", result.Name, result.DeedScore, result.Reputation.Score)
		recorded++
	}
	return recorded, failed
}
