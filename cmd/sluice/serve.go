package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/internal/config"
	"github.com/aretw0/sluice/internal/logging"
	httpAdapter "github.com/aretw0/sluice/pkg/adapters/http"
	redisAdapter "github.com/aretw0/sluice/pkg/adapters/redis"
	"github.com/aretw0/sluice/pkg/journal"
	"github.com/aretw0/sluice/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the settlement router in server mode, exposing a JSON API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		logger := logging.New(level)

		promReg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(promReg)
		hooks := observability.CombineHooks(metrics.Hooks(), observability.LoggingHooks(logger))

		opts := []sluice.Option{
			sluice.WithLogger(logger),
			sluice.WithLifecycleHooks(hooks),
			sluice.WithWrappedNative(cfg.Router.WrappedNative),
			sluice.WithDefaultActive(cfg.Router.DefaultActive),
		}

		if cfg.Redis.Addr != "" {
			client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			defer client.Close()
			opts = append(opts,
				sluice.WithRegistryStore(redisAdapter.NewStore(client, cfg.Redis.Prefix)),
				sluice.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)),
			)
			logger.Info("redis enabled", "addr", cfg.Redis.Addr)
		}

		if cfg.Journal.Path != "" {
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()
			opts = append(opts, sluice.WithJournal(store))
			logger.Info("journal enabled", "path", cfg.Journal.Path)
		}

		router, err := sluice.New(cfg.Admin.Address, cfg.Router.Address, opts...)
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}
		if err := router.Rehydrate(cmd.Context()); err != nil {
			return fmt.Errorf("rehydrate registry: %w", err)
		}
		if router.Registry().Len() == 0 {
			ids, err := router.RegisterBuiltins(cmd.Context())
			if err != nil {
				return fmt.Errorf("register adapters: %w", err)
			}
			logger.Info("registered built-in adapters", "ids", ids)
		}

		handler := httpAdapter.NewHandler(router, cfg.Admin.Address, cfg.Admin.APIKey,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(promReg),
			httpAdapter.WithCatalog(router.BuiltinCatalog()),
		)

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("server stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
