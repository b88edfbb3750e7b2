// Command generate writes a dashboard dataset for a brand catalog as JSON.
//
// Settings come from the environment (see internal/config); flags override
// them for a single run. An output path of "-" writes to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-datagen/internal/config"
	"dashboard-datagen/internal/models"
	"dashboard-datagen/internal/observability"
	"dashboard-datagen/internal/services"
	"dashboard-datagen/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Generator.CatalogFile, "catalog", cfg.Generator.CatalogFile, "brand catalog JSON file")
	fs.StringVar(&cfg.Generator.OutputFile, "out", cfg.Generator.OutputFile, `output file, or "-" for stdout`)
	fs.StringVar(&cfg.Generator.RulesFile, "rules", cfg.Generator.RulesFile, "category rules YAML file")
	fs.Uint64Var(&cfg.Generator.Seed, "seed", cfg.Generator.Seed, "random seed, 0 for a fresh run")
	fs.IntVar(&cfg.Generator.RecordCount, "records", cfg.Generator.RecordCount, "records per generated collection")
	fs.StringVar(&cfg.Generator.Sampling, "sampling", cfg.Generator.Sampling, "basket brand sampling: uniform or weighted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := observability.NewLogger(cfg.Logger, stderr)

	st, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cls, gen, err := services.NewGenerator(cfg.Generator, logger)
	if err != nil {
		return err
	}

	dataset := services.NewDatasetService(gen, cls, st, logger)
	if err := dataset.LoadCatalogFile(ctx, cfg.Generator.CatalogFile); err != nil {
		return err
	}

	start := time.Now()
	ds, err := dataset.Regenerate(ctx)
	if err != nil {
		return err
	}

	if cfg.Generator.OutputFile == "-" {
		if err := dataset.Encode(stdout); err != nil {
			return fmt.Errorf("write dataset: %w", err)
		}
	} else if err := dataset.WriteJSON(cfg.Generator.OutputFile); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	attrs := []any{"output", cfg.Generator.OutputFile, "duration", time.Since(start)}
	counts := ds.Counts()
	for _, section := range models.Sections {
		attrs = append(attrs, slog.Int(section, counts[section]))
	}
	logger.Info("dashboard dataset written", attrs...)
	return nil
}
