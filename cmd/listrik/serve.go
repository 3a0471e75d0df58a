package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"listrik/internal/cache"
	"listrik/internal/catalog"
	"listrik/internal/cli"
	apphttp "listrik/internal/http"
	"listrik/internal/log"
	"listrik/internal/notify"
	"listrik/internal/services"
	"listrik/internal/session"
)

const (
	shutdownTimeout   = 30 * time.Second
	sessionEndTimeout = 5 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	ctx, stop := cli.GracefulShutdown(cmd.Context(), logger)
	defer stop()

	notifyCfg, err := notify.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	pub, err := notify.NewFactory(logger, notify.DefaultConnectors()).CreatePublisher(ctx, notifyCfg)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	ledgers := services.NewLedgerService(pub.Publisher, logger)
	defer func() {
		if err := ledgers.Close(); err != nil {
			logger.Error("Failed to close event publisher", log.FieldError, err)
		}
	}()

	sessions := session.NewStore(session.Options{
		MaxSessions: cfg.SessionMax,
		TTL:         cfg.SessionTTL,
		CookieName:  cfg.SessionCookie,
		NewLedger:   cat.NewLedger,
		OnEnd: func(id string) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionEndTimeout)
			defer cancel()
			ledgers.EndSession(ctx, id)
		},
		Logger: logger,
	})
	caches := cache.NewManager(logger)
	caches.Register("sessions", sessions)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions:           sessions,
		Ledger:             ledgers,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadyChecks: map[string]apphttp.ReadyCheck{
			"catalog": func(context.Context) error {
				_, err := cat.NewLedger()
				return err
			},
		},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting listrik server",
			"port", cfg.Port,
			"version", versioninfo.Short(),
			"sinks", pub.Sinks,
			"appliances", len(cat.Appliances))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		caches.StartCleanup(gctx, cfg.CacheCleanupInterval)
		<-gctx.Done()
		caches.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
