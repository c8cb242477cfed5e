package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/migrate"
)

func main() {
	file := flag.String("file", "", "path to the ledger CSV export")
	replace := flag.Bool("replace", false, "delete every existing transaction before loading")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	_ = godotenv.Load()

	logg := logger.New(logger.Options{ServiceName: "ledger-import"})
	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "ledger_import.config_invalid", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "ledger-import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"file":    *file,
		"replace": *replace,
		"dry_run": *dryRun,
		"driver":  cfg.DB.Driver,
	})
	opts := ledger.ImportOptions{Replace: *replace, DryRun: *dryRun}
	if err := run(ctx, cfg, logg, *file, opts); err != nil {
		logg.Error(ctx, "ledger_import.failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, path string, opts ledger.ImportOptions) error {
	if path == "" {
		return errors.New("missing -file")
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	importer, err := ledger.NewImporter(ledger.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		return err
	}
	result, err := importer.Import(ctx, in, opts)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"imported": result.Imported,
		"deleted":  result.Deleted,
	})
	for _, column := range result.IgnoredColumns {
		logg.Warn(logg.WithField(ctx, "column", column), "ledger_import.column_ignored")
	}
	logg.Info(ctx, "ledger_import.completed")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
