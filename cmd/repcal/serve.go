package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/carpenike/repcal/internal/config"
	"github.com/carpenike/repcal/internal/handlers"
	"github.com/carpenike/repcal/internal/syncqueue"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the sync drainer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			defer setupLogging(cfg.Log).Close()
			return serve(cmd.Context(), cfg)
		},
	}
}

func newTransport(cfg config.SyncConfig) syncqueue.Transport {
	if len(cfg.URLs) > 0 {
		return syncqueue.NewShoutrrrTransport(cfg.URLs...)
	}
	return syncqueue.SimulatorTransport{Delay: 100 * time.Millisecond}
}

// newSyncQueue returns nil when sync is disabled, so saves are never
// queued for a drain that will not run.
func newSyncQueue(cfg config.SyncConfig) *syncqueue.Queue {
	if !cfg.Enabled {
		return nil
	}
	q := syncqueue.New(newTransport(cfg), cfg.RetryDelay)
	q.SetOnline(true)
	return q
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := newSyncQueue(cfg.Sync)

	a, db, err := openApp(ctx, cfg, queue)
	if err != nil {
		return err
	}
	defer db.Close()

	if queue != nil {
		drainer := syncqueue.NewDrainer(queue, cfg.Sync.Interval)
		drainer.Start()
		defer drainer.Stop()
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db)
	sessionManager.Lifetime = 30 * 24 * time.Hour
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.SecureCookies

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handlers.NewRouter(a, sessionManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("RepCal listening on %s (program %q)", cfg.Server.Address, a.Program().Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if queue != nil && queue.Len() > 0 {
		log.Printf("%d sync items still pending at shutdown", queue.Len())
	}
	return nil
}
