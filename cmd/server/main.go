package main

import (
	"context"
	"ctchen222/tictactoe-service/internal/api/controller"
	"ctchen222/tictactoe-service/internal/api/repository"
	"ctchen222/tictactoe-service/internal/api/service"
	"ctchen222/tictactoe-service/internal/config"
	"ctchen222/tictactoe-service/internal/db"
	"ctchen222/tictactoe-service/internal/logger"
	"ctchen222/tictactoe-service/internal/server"
	"ctchen222/tictactoe-service/internal/telemetry"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yml"
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// Initialize telemetry before the logger so the otel bridge picks up the provider.
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create repositories
	gameRepo, closeStorage, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	// Create services
	gameService, err := service.NewGameService(gameRepo)
	if err != nil {
		return fmt.Errorf("failed to create game service: %w", err)
	}

	// Create controllers
	gameController := controller.NewGameController(gameService)

	// Create the Gin-based server
	srv := server.NewServer(cfg.HTTP, gameController)
	httpServer := srv.HTTPServer()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "http.addr", cfg.HTTP.Addr, "storage.driver", cfg.Storage.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}

// openRepository builds the configured game store, wrapped by the redis cache when enabled.
func openRepository(ctx context.Context, cfg *config.Config) (repository.GameRepository, func(), error) {
	var (
		gameRepo repository.GameRepository
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := db.MigratePostgres(cfg.Storage.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		conn, err := db.PostgresConnect(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		closers = append(closers, func() {
			if sqlDB, err := conn.DB(); err == nil {
				sqlDB.Close()
			}
		})
		gameRepo = repository.NewPostgresGameRepository(conn)
	default:
		pool, err := db.SQLiteConnect(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize sqlite db: %w", err)
		}
		closers = append(closers, func() { pool.Close() })
		gameRepo = repository.NewGameRepository(pool)
	}

	if cfg.CacheEnabled() {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		closers = append(closers, func() { rdb.Close() })
		gameRepo = repository.NewCachedGameRepository(gameRepo, rdb, cfg.Redis.CacheTTL)
	}

	return gameRepo, closeAll, nil
}
