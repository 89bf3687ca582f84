// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdiddy/relational-matrix/internal/repository/sqlstore"
	"github.com/pdiddy/relational-matrix/internal/repository/workbook"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load an evidence workbook into the database",
	Long: `Import reads every evidence sheet of the --workbook file and replaces the
contents of the matching database tables in one transaction. Tables are created
when missing. Sheets absent from the workbook leave their tables empty.`,
	Example: `  relational-matrix import --workbook evidence.xlsx --driver sqlite3 --database-url data/evidence.db`,
	RunE:    runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	if cfg.Workbook.Path == "" {
		return fmt.Errorf("--workbook is required")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("--database-url is required")
	}

	logger := slog.Default()
	ctx := cmd.Context()

	ds, err := workbook.Load(cfg.Workbook.Path, logger)
	if err != nil {
		return err
	}

	store, err := sqlstore.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Import(ctx, ds, cmd.OutOrStdout())
	return err
}

func init() {
	rootCmd.AddCommand(importCmd)
}
