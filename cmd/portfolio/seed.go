package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/content"
	"github.com/jasonbahil/portfolio/internal/db"
)

var (
	seedFile    string
	seedReplace bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import portfolio content from a YAML or JSON file",
	Long: `Import projects, experience, trainings, tech and links from a seed file.
The file is checked against the content schema before anything is written.
With --replace the existing content is deleted first.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to the seed file (required)")
	seedCmd.Flags().BoolVar(&seedReplace, "replace", false, "Delete existing content before importing")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	doc, err := loadSeedFile(seedFile)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	summary, err := importContent(ctx, database, doc, seedReplace, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// loadSeedFile parses and schema-checks a seed file without touching the
// database, so a bad file fails before a connection is made.
func loadSeedFile(path string) (*content.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	doc, err := content.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func importContent(ctx context.Context, store content.Store, doc *content.Document, replace bool, logger *zap.Logger) (*content.Summary, error) {
	summary, err := content.NewSeeder(store, logger).Import(ctx, doc, replace)
	if err != nil {
		return summary, fmt.Errorf("failed to import content: %w", err)
	}
	return summary, nil
}
