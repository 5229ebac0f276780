package main

import (
	"fmt"
	"os"

	"github.com/hyperengineering/liftlog/internal/config"
	"github.com/hyperengineering/liftlog/internal/store"
	"github.com/hyperengineering/liftlog/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the exercise library from a YAML catalog",
	Long:  "Inserts exercise catalog entries into the library table. Entries whose name already exists are skipped, so re-running is safe.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "config/exercises.yaml",
		"YAML file with a list of {name, category} entries")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var entries []types.ExerciseLibraryEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog %s contains no entries", seedFile)
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	inserted, err := db.SeedExercises(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("seed exercises: %w", err)
	}

	fmt.Printf("Seeded %d of %d exercises (%d already present)\n",
		inserted, len(entries), len(entries)-inserted)
	return nil
}
