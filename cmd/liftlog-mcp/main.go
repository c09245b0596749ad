// liftlog-mcp serves the LiftLog MCP tools over stdio. It reads data either
// from the local store (default) or from a running LiftLog server's REST API
// when -url is given.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/store"
	"github.com/claude/liftlog/internal/timer"
	"github.com/claude/liftlog/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a running LiftLog server (remote mode)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		log.Info("remote mode", "url", *remoteURL)
		ds = mcp.NewHTTPClient(*remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		st, err := openStore(context.Background(), cfg)
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer st.Close()

		repo := store.NewRepo(st)
		rt := timer.New(store.DefaultRestDuration)
		defer rt.Close()
		// Queries only; the engine's session mutations are never reached
		// over MCP, so the discarded logger keeps stderr clean.
		ds = workout.NewEngine(repo, rt, slog.New(slog.NewTextHandler(io.Discard, nil)))
		log.Info("local mode", "driver", cfg.Database.Driver)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		return store.NewPostgres(ctx, cfg.Database.DSN())
	}
	return store.OpenSQLite(cfg.Database.Path)
}
