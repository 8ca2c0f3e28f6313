// Command janusd wires the core components — store, cache, watcher,
// hooks and the write path — into a long-running process and keeps
// them running until signalled. It deliberately exposes no CLI or TUI
// surface of its own: that is left to an external collaborator built
// on top of this module. Its only job is to prove the wiring, the way
// cmd/factory/main.go does for the teacher's orchestrator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divmain/janus/internal/cache"
	"github.com/divmain/janus/internal/config"
	"github.com/divmain/janus/internal/hooks"
	"github.com/divmain/janus/internal/repo"
	"github.com/divmain/janus/internal/store"
	"github.com/divmain/janus/internal/watcher"
	"github.com/divmain/janus/internal/write"
)

var (
	version = "dev"
)

func main() {
	var (
		root           = flag.String("root", "", "janus root directory (overrides JANUS_ROOT)")
		logLevel       = flag.String("log-level", "info", "log level: debug, info, warn, error")
		rebuildOnStart = flag.Bool("rebuild-cache", false, "rebuild the query cache from the store on startup")
		showVersion    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("janusd %s\n", version)
		return
	}

	if *root != "" {
		os.Setenv("JANUS_ROOT", *root)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := run(logger, *rebuildOnStart); err != nil {
		logger.Error("janusd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, rebuildOnStart bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("loaded config", "config", cfg)

	s := store.New(logger)
	if err := s.Init(); err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}
	logger.Info("store initialised", "tickets", s.TicketCount())

	c, err := cache.Open(repo.CachePath())
	if err != nil {
		logger.Warn("failed to open query cache, continuing without it", "err", err)
		c = nil
	}
	if c != nil {
		defer c.Close()
		if rebuildOnStart {
			if err := c.RebuildFromStore(s); err != nil {
				logger.Warn("failed to rebuild cache on startup", "err", err)
			}
		}
	}

	w, err := watcher.New(s, c, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	hookRunner := hooks.New(hooks.Config{
		Enabled: cfg.Hooks.Enabled,
		Timeout: time.Duration(cfg.Hooks.Timeout) * time.Second,
		Scripts: cfg.Hooks.Scripts,
	})

	_ = write.New(s, c, w, hookRunner, logger)

	logger.Info("janusd running", "root", repo.Root())
	<-ctx.Done()
	logger.Info("janusd shutting down")
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
