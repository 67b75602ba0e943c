package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/ab"
	"github.com/bookbarn/recommendation-engine/internal/cache"
	"github.com/bookbarn/recommendation-engine/internal/config"
	"github.com/bookbarn/recommendation-engine/internal/events"
	"github.com/bookbarn/recommendation-engine/internal/graph"
	"github.com/bookbarn/recommendation-engine/internal/handler"
	"github.com/bookbarn/recommendation-engine/internal/repository"
	"github.com/bookbarn/recommendation-engine/internal/router"
	"github.com/bookbarn/recommendation-engine/internal/service"
	"github.com/bookbarn/recommendation-engine/internal/strategy"
	"github.com/bookbarn/recommendation-engine/seeds"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	log := zl.Sugar()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to parse database config", "error", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.Fatalw("database not ready", "error", err)
	}
	log.Infow("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrate(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			log.Fatalw("failed to migrate down", "error", err)
		}
		log.Infow("migrations dropped")
		return
	}

	if err := migrate(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		log.Fatalw("failed to migrate up", "error", err)
	}
	log.Infow("migrations applied")

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool, log); err != nil {
		log.Fatalw("failed to check seed", "error", err)
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalw("failed to parse redis url", "error", err)
	}
	redisClient := redis.NewClient(redisOpts)
	recCache := cache.New(redisClient, cfg.CacheTTL)
	if err := recCache.Ping(ctx); err != nil {
		log.Warnw("redis not reachable, recommendations will be computed per request", "error", err)
	}

	// ------------ Neo4j ---------------
	graphStore, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, log)
	if err != nil {
		log.Warnw("graph backend unavailable, graph strategy will serve mock data", "error", err)
		graphStore = nil
	}
	if graphStore != nil {
		defer graphStore.Close(ctx)
	}

	// ---------------- Wiring --------------------
	repo := repository.New(pool)

	collab := strategy.NewCollaborative(repo, log)
	content := strategy.NewContent(repo, log)
	graphStrategy := strategy.NewGraph(graphStore, repo, log)

	abService := ab.NewService(repo, repo, log)
	eventService := events.NewService(repo, log)
	svc := service.NewService(abService, recCache, eventService, collab, content, graphStrategy, cfg.DefaultLimit, log)

	h := handler.NewHandler(svc, abService, eventService)

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.Setup(h),
	}
	log.Infow("server running", "addr", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Infow("waiting for database...", "attempt", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrate(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		log.Infow("database already seeded, skipping", "users", count)
		return nil
	}
	return seeds.Setup(ctx, pool, log)
}
