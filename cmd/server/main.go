package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kvstore/internal/api"
	"kvstore/internal/config"
	"kvstore/internal/logs"
	"kvstore/internal/metrics"
	"kvstore/internal/store"
	"kvstore/internal/ttl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configFile    string
		addr          string
		sweepInterval time.Duration
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:   "kvstore",
		Short: "Run the in-memory TTL key-value store",
		Long:  "Serve a volatile key-value store over HTTP where each entry may carry a TTL after which it becomes invisible and is eventually swept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				var err error
				cfg, err = config.LoadFromFile(configFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			config.LoadFromEnv(cfg)

			// Flags win over file and environment.
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("sweep-interval") {
				cfg.Sweeper.Interval = config.Duration(sweepInterval)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}

			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", 5*time.Second, "interval between expired-key sweeps")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	return cmd
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logger
	logger := logs.NewLogger(cfg.Logging.BufferSize, logs.ParseLevel(cfg.Logging.Level), os.Stdout)

	// Metrics
	m := metrics.New(cfg.Metrics.Namespace)

	// Store
	kv := store.NewStore(m)

	// TTL cleaner
	cleaner := ttl.NewCleaner(kv, cfg.Sweeper.Interval.Std(), logger, m)
	go cleaner.Start(ctx)

	// API
	handler := api.NewHandler(kv, m, logger)
	mux := http.NewServeMux()
	httpHandler := api.RegisterRoutes(mux, handler, m, logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpHandler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started on " + cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
