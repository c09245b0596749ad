// liftlog-import restores a LiftLog backup document into the configured
// store, replacing the exercise catalog, routines, and workout history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/store"
	"github.com/claude/liftlog/internal/transfer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	backupPath := flag.String("file", "", "path to backup JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "validate the backup without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *backupPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file backup.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*backupPath)
	if err != nil {
		log.Error("failed to read backup file", "path", *backupPath, "error", err)
		os.Exit(1)
	}

	backup, err := transfer.Parse(data)
	if err != nil {
		log.Error("backup validation failed", "error", err)
		os.Exit(1)
	}
	log.Info("backup parsed",
		"exercises", len(backup.Exercises),
		"routines", len(backup.Routines),
		"workouts", len(backup.WorkoutHistory),
	)

	if *dryRun {
		log.Info("DRY RUN mode — nothing written to the store")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := transfer.Restore(ctx, store.NewRepo(st), backup); err != nil {
		log.Error("restore failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		dsn := cfg.Database.DSN()
		if err := store.RunMigrations(dsn, "migrations"); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
		return store.NewPostgres(ctx, dsn)
	}
	return store.OpenSQLite(cfg.Database.Path)
}
