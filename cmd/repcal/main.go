package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/config"
	"github.com/carpenike/repcal/internal/database"
	"github.com/carpenike/repcal/internal/normalize"
	"github.com/carpenike/repcal/internal/storage"
	"github.com/carpenike/repcal/internal/syncqueue"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "repcal",
		Short:         "Workout program tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "repcal.yaml path or directory containing it")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newCheckTemplateCmd())
	return root
}

// setupLogging sends the standard logger to a rotating file as well as
// stderr when log.file is set.
func setupLogging(cfg config.LogConfig) io.Closer {
	if cfg.File == "" {
		return io.NopCloser(nil)
	}
	writer := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, writer))
	return writer
}

// programSource maps the configured template or config dir onto a loader
// rooted at its directory.
func programSource(cfg config.ProgramConfig) (app.Options, error) {
	var opts app.Options
	switch {
	case cfg.Template != "":
		abs, err := filepath.Abs(cfg.Template)
		if err != nil {
			return opts, fmt.Errorf("resolve template: %w", err)
		}
		opts.Loader = normalize.FSLoader{FS: os.DirFS(filepath.Dir(abs))}
		opts.Template = filepath.Base(abs)
	case cfg.ConfigDir != "":
		abs, err := filepath.Abs(cfg.ConfigDir)
		if err != nil {
			return opts, fmt.Errorf("resolve config dir: %w", err)
		}
		opts.Loader = normalize.FSLoader{FS: os.DirFS(abs)}
		opts.ConfigDir = "."
	}
	opts.Seed = database.SeedProgram()
	return opts, nil
}

// openApp opens the database and loads the App over it. Recovered load
// problems are logged; the App is still returned.
func openApp(ctx context.Context, cfg config.Config, q *syncqueue.Queue) (*app.App, *sql.DB, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	version, err := database.SchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Printf("Database ready: %s (schema v%d)", filepath.Clean(cfg.Database.Path), version)

	opts, err := programSource(cfg.Program)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	opts.KV = storage.NewSQLite(db)
	opts.Queue = q

	a, err := app.Load(ctx, opts)
	if err != nil {
		log.Printf("Recovered while loading state: %v", err)
	}
	return a, db, nil
}
