package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RexySaragih/rapid-quack/internal/api"
	"github.com/RexySaragih/rapid-quack/internal/factory"
	redisstorage "github.com/RexySaragih/rapid-quack/internal/storage/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type serverOptions struct {
	port        int
	redisURL    string
	storageType string
}

func newRootCmd() *cobra.Command {
	opts := &serverOptions{}

	rootCmd := &cobra.Command{
		Use:   "rapid-quack-server",
		Short: "Multiplayer coordination server for the rapid-quack typing game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().IntVar(&opts.port, "port", envInt("PORT", 3001), "HTTP listen port (env: PORT)")
	rootCmd.Flags().StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis connection URL (env: REDIS_URL)")
	rootCmd.Flags().StringVar(&opts.storageType, "storage", os.Getenv("STORAGE_TYPE"), "Storage backend: redis or memory (env: STORAGE_TYPE)")

	return rootCmd
}

func run(opts *serverOptions) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: opts.storageType,
	}

	// Prefer the durable backend whenever a Redis URL is configured; the
	// factory falls back to memory if it is unreachable
	if cfg.StorageType == "" && opts.redisURL != "" {
		cfg.StorageType = factory.StorageTypeRedis
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if opts.redisURL != "" {
			redisCfg.URL = opts.redisURL
		}
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		_ = app.Close()
	}()

	logger.Info("storage backend selected", slog.String("backend", app.StorageBackend))

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Store:          app.Store,
		StorageBackend: app.StorageBackend,
		WSHandler:      app.WSHandler,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = opts.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
