package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avkor/shelltrack/internal/i18n"
	"github.com/avkor/shelltrack/internal/server"
	"github.com/avkor/shelltrack/internal/session"
	"github.com/avkor/shelltrack/internal/tracker"
)

// ServeCmd runs the WebSocket server.
type ServeCmd struct {
	Config   string `short:"c" help:"Path to HCL config file" type:"existingfile" optional:""`
	Address  string `help:"Listen address (overrides config)" optional:""`
	Port     int    `help:"Listen port (overrides config)" optional:""`
	LogLevel string `help:"Log level (debug, info, warn, error)" optional:""`
	Database string `help:"Sqlite session database path (overrides config)" optional:""`
}

func (c *ServeCmd) Run() error {
	config, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(); err != nil {
		return err
	}
	// Flags beat both file and environment.
	if c.Address != "" {
		config.Server.Address = c.Address
	}
	if c.Port != 0 {
		config.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		config.Server.LogLevel = c.LogLevel
	}
	if c.Database != "" {
		config.Server.DatabasePath = c.Database
	}

	logger := newLogger(config.Server.LogLevel)

	var store session.Store
	var sweep func(context.Context, time.Duration) int
	if config.Server.DatabasePath != "" {
		sqlite, err := session.OpenSQLite(config.Server.DatabasePath)
		if err != nil {
			return fmt.Errorf("open session database: %w", err)
		}
		defer sqlite.Close()
		store = sqlite
		sweep = func(ctx context.Context, idle time.Duration) int {
			n, err := sqlite.Sweep(ctx, idle)
			if err != nil {
				logger.Error("session sweep failed", "err", err)
			}
			return int(n)
		}
		logger.Info("using sqlite session store", "path", config.Server.DatabasePath)
	} else {
		memory := session.NewMemoryStore()
		store = memory
		sweep = func(_ context.Context, idle time.Duration) int {
			return memory.Sweep(idle)
		}
		logger.Info("using in-memory session store")
	}

	bundle, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	svc := tracker.New(store, logger)
	handler := server.NewHandler(svc, bundle, logger)
	srv := server.NewServer(config.ListenAddr(), handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(srv.Start)
	group.Go(func() error {
		<-ctx.Done()
		srv.Stop()
		return nil
	})

	if idle := config.Server.SessionIdleMinutes; idle > 0 {
		interval := time.Duration(idle) * time.Minute
		group.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := sweep(ctx, interval); n > 0 {
						logger.Info("swept idle sessions", "count", n)
					}
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	return group.Wait()
}
