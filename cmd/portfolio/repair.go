package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/highlights"
)

var (
	repairCollection string
	repairDryRun     bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Rewrite malformed stored lists into canonical form",
	Long: `Scan encoded list columns (experience highlights, project tags, project
media) and rewrite every value that is not a valid list. Without --collection
all collections are scanned. --dry-run reports what would change.`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringVarP(&repairCollection, "collection", "c", "", "Collection to repair (default: all)")
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "Report changes without writing")
	rootCmd.AddCommand(repairCmd)
}

// columnSource opens encoded list columns by collection name
type columnSource interface {
	EncodedListColumn(name string) (highlights.Store, error)
}

func runRepair(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	collections := db.EncodedCollections()
	if repairCollection != "" {
		collections = []string{repairCollection}
	}

	reports, err := repairCollections(ctx, database, collections, repairDryRun, logger)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(reports); encErr != nil && err == nil {
		err = encErr
	}
	return err
}

// repairCollections scans each collection in turn and stops at the first
// one that cannot be scanned. Reports of finished collections are returned
// either way.
func repairCollections(ctx context.Context, src columnSource, collections []string, dryRun bool, logger *zap.Logger) ([]*highlights.Report, error) {
	reports := make([]*highlights.Report, 0, len(collections))
	for _, name := range collections {
		store, err := src.EncodedListColumn(name)
		if err != nil {
			return reports, fmt.Errorf("unknown collection %q (known: %v): %w", name, db.EncodedCollections(), err)
		}

		repairer := highlights.NewRepairer(name, store, highlights.WithLogger(logger.With(zap.String("collection", name))))
		run := repairer.RepairAll
		if dryRun {
			run = repairer.Plan
		}

		report, err := run(ctx)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, fmt.Errorf("repair of %s failed: %w", name, err)
		}
	}
	return reports, nil
}
