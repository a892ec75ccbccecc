// api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"funnelboard/api/config"
	"funnelboard/api/database"
	"funnelboard/api/handlers"
	"funnelboard/api/logger"
	"funnelboard/api/middleware"
	"funnelboard/api/store"
)

const defaultImportTable = "funnel_events"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Env)
	defer logger.Sync()

	if len(os.Args) > 1 && os.Args[1] == "import" {
		if err := runImport(cfg, os.Args[2:]); err != nil {
			logger.Log.Fatal("Import failed", zap.Error(err))
		}
		return
	}

	runServer(cfg)
}

// buildLoader registers every backend the configuration enables. The returned
// cleanup closes their connections.
func buildLoader(ctx context.Context, cfg *config.Config) (*store.Loader, func(), error) {
	loc, err := cfg.Data.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone %q: %w", cfg.Data.Timezone, err)
	}

	loader := store.NewLoader(loc)
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.ClickHouse.Enabled {
		chClient, err := database.NewClickHouseDB(cfg.ClickHouse)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize ClickHouse database: %w", err)
		}
		closers = append(closers, chClient.Close)
		loader.Register("clickhouse", store.NewClickHouseEventStore(chClient))
	}

	if cfg.Postgres.Enabled {
		dbClient, err := database.NewPostgresDB(cfg.Postgres)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
		}
		closers = append(closers, dbClient.Close)
		loader.Register("postgres", store.NewPostgresEventStore(dbClient.DB))
	}

	if cfg.S3.Enabled {
		s3Source, err := store.NewS3Source(ctx, cfg.S3.Region)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		loader.Register("s3", s3Source)
	}

	return loader, cleanup, nil
}

func runServer(cfg *config.Config) {
	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	loader, cleanup, err := buildLoader(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal("Failed to configure event sources", zap.Error(err))
	}
	defer cleanup()

	var sectionCache *store.SectionCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Log.Warn("Redis unreachable, rendered sections will not be cached", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			sectionCache = store.NewSectionCache(rdb, cfg.Redis.TTL())
			logger.Log.Info("Section cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL()))
		}
		cancel()
	}

	sessions := store.NewSessionCache(loader)
	analyticsHandlers := handlers.NewAnalyticsHandlers(sessions, sectionCache, cfg.Data.Source)

	// Warm the session so the first dashboard request does not pay for the load.
	// A failure here is not fatal: requests will report it and /api/reload can retry.
	go func() {
		if _, err := sessions.Get(context.Background(), cfg.Data.Source); err != nil {
			logger.Log.Error("Initial event log load failed", zap.String("source", cfg.Data.Source), zap.Error(err))
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.Server.FrontendOrigin))

	handlers.RegisterRoutes(r, analyticsHandlers)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		logger.Log.Info("Funnel API server starting", zap.String("addr", srv.Addr), zap.String("source", cfg.Data.Source))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Funnel API server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}

// runImport copies an event log from any supported source into a ClickHouse table,
// so later runs can use FUNNEL_SOURCE=clickhouse://<table>.
//
//	funnelboard import <source> [table]
func runImport(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s import <source> [table]", os.Args[0])
	}
	source, table := args[0], defaultImportTable
	if len(args) > 1 {
		table = args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	loader, cleanup, err := buildLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log, err := loader.Load(ctx, source)
	if err != nil {
		return err
	}

	chClient, err := database.NewClickHouseDB(cfg.ClickHouse)
	if err != nil {
		return fmt.Errorf("failed to initialize ClickHouse database: %w", err)
	}
	defer chClient.Close()

	events := store.NewClickHouseEventStore(chClient)
	if err := events.CreateTable(ctx, table); err != nil {
		return err
	}
	if err := events.InsertEvents(ctx, table, log); err != nil {
		return err
	}

	logger.Log.Info("Import complete", zap.String("source", source), zap.String("table", table), zap.Int("records", log.Len()))
	return nil
}
