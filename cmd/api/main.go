package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/codearcheologist/codearch-backend/config"
	httpapi "github.com/codearcheologist/codearch-backend/internal/api/http"
	"github.com/codearcheologist/codearch-backend/internal/bootstrap"
	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/agents"
	cronjob "github.com/codearcheologist/codearch-backend/internal/migration/cron"
	"github.com/codearcheologist/codearch-backend/internal/migration/execution"
	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
	"github.com/codearcheologist/codearch-backend/internal/migration/observability"
	"github.com/codearcheologist/codearch-backend/internal/migration/repository"
	"github.com/codearcheologist/codearch-backend/internal/migration/resilience"
	"github.com/codearcheologist/codearch-backend/internal/migration/service"
)

const serviceName = "codearch-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	store, storePing, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	invoker := resilience.NewInvoker(
		resilience.Policy{MaxAttempts: cfg.Pipeline.RetryMaxAttempts, Delay: cfg.Pipeline.RetryDelay},
		resilience.WithRetryHook(metrics.ProviderRetry),
	)
	rt := agents.NewRuntime(newModelClient(cfg.LLM), invoker)

	pipeline := service.NewPipeline(
		store,
		agents.NewAnalyzer(rt),
		agents.NewDesigner(rt),
		agents.NewBuilder(rt),
		execution.NewHeuristicChecker(),
		service.Options{
			ListLimit:        cfg.Pipeline.ListLimit,
			BuildMaxAttempts: cfg.Pipeline.BuildMaxAttempts,
			Metrics:          metrics,
		},
	)

	sweeper := cronjob.NewSweeper(store, metrics, cfg.Sweeper.Schedule, cfg.Sweeper.StaleAfter)
	if err := sweeper.Start(); err != nil {
		slog.Error("sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		StoreName:   cfg.Store.Backend,
		StorePing:   storePing,
		Pipeline:    pipeline,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", srv.Addr, "store", cfg.Store.Backend, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

// openStore picks the project repository for cfg.Store.Backend.
func openStore(ctx context.Context, cfg *config.Config) (service.ProjectRepository, httpapi.Pinger, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repo, pool.Ping, pool.Close, nil

	case config.StoreRedis:
		client, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return repository.NewRedisRepository(client), ping, func() { _ = client.Close() }, nil

	default:
		return repository.NewMemoryRepository(), nil, func() {}, nil
	}
}

func newModelClient(cfg config.LLMConfig) llm.Client {
	if cfg.APIKey == "" {
		slog.Warn("no model API key configured; every stage will use simulated artifacts")
		return llm.DisabledClient{}
	}
	client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	if err != nil {
		slog.Warn("model client disabled", "error", err)
		return llm.DisabledClient{}
	}
	return client
}
