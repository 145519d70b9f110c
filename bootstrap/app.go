// Package bootstrap wires the Argus components into a running service.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"argus/analyzer"
	"argus/api"
	"argus/config"
	"argus/core"
	"argus/llm"
	"argus/mitre"

	"go.uber.org/zap"
)

// App represents the Argus application with all its components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Catalog    *mitre.Catalog
	Correlator *core.Correlator
	Analyzer   *analyzer.Analyzer
	APIServer  *api.API

	redisCache *core.RedisCache
	shutdownCh chan struct{}
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{shutdownCh: make(chan struct{})}

	logger, sugar, err := InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("Argus threat intelligence service starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	catalog, err := InitCatalog(cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Catalog = catalog

	app.Correlator = core.NewCorrelator(sugar)

	engine := InitLLMEngine(cfg, sugar)

	cache := app.initCache(ctx)

	app.Analyzer = analyzer.NewAnalyzer(engine, catalog, app.Correlator, cache, analyzer.Options{
		MaxRelated:   cfg.Analysis.MaxRelated,
		BatchWorkers: cfg.Analysis.BatchWorkers,
	}, sugar)

	app.APIServer = api.NewAPI(app.Analyzer, cfg, sugar)
	return app, nil
}

// InitCatalog loads the technique catalog, either the embedded table or an
// external data file when configured.
func InitCatalog(cfg *config.Config, sugar *zap.SugaredLogger) (*mitre.Catalog, error) {
	if path := cfg.Analysis.TechniqueCatalog; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read technique catalog %s: %w", path, err)
		}
		catalog, err := mitre.LoadCatalog(data)
		if err != nil {
			return nil, err
		}
		sugar.Infof("Loaded technique catalog from %s: %d techniques", path, len(catalog.Techniques()))
		return catalog, nil
	}

	catalog := mitre.DefaultCatalog()
	sugar.Infof("Using builtin technique catalog: %d techniques", len(catalog.Techniques()))
	return catalog, nil
}

// InitLLMEngine selects the LLM backend from configuration. Without an API
// key the deterministic mock backend is used.
func InitLLMEngine(cfg *config.Config, sugar *zap.SugaredLogger) *llm.Engine {
	var provider llm.Provider
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey != "" {
		provider = llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.Model, llm.WithTimeout(cfg.LLM.Timeout))
		sugar.Infof("LLM backend: openai model=%s", cfg.LLM.Model)
	} else {
		provider = llm.NewMockProvider()
		sugar.Warn("No LLM API key configured; running with deterministic mock analysis")
	}
	return llm.NewEngine(provider, sugar)
}

// initCache connects Redis when enabled and reachable, otherwise falls back
// to the in-process LRU cache.
func (a *App) initCache(ctx context.Context) analyzer.ResultCache {
	cfg := a.Config
	if cfg.Redis.Enabled {
		rc := core.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, a.Sugar)
		if err := rc.Ping(ctx); err != nil {
			a.Sugar.Warnf("Redis unreachable at %s, falling back to in-memory cache: %v", cfg.Redis.Addr, err)
		} else {
			a.Sugar.Infof("Connected to Redis at %s", cfg.Redis.Addr)
			a.redisCache = rc
			return analyzer.NewRedisResultCache(rc, cfg.Analysis.CacheTTL, a.Sugar)
		}
	}
	return analyzer.NewLRUResultCache(cfg.Analysis.FallbackLRUSize, cfg.Analysis.CacheTTL)
}

// Start launches the API server.
func (a *App) Start(_ context.Context) error {
	go func() {
		if err := a.APIServer.Start(); err != nil {
			a.Sugar.Errorf("API server stopped: %v", err)
			close(a.shutdownCh)
		}
	}()
	return nil
}

// WaitForShutdown blocks until an interrupt signal or a fatal server error.
func (a *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.Sugar.Infof("Received signal %s, shutting down", sig)
	case <-a.shutdownCh:
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.API.ShutdownTimeout)
	defer cancel()

	if err := a.APIServer.Stop(ctx); err != nil {
		a.Sugar.Errorf("Failed to stop API server: %v", err)
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.Sugar.Errorf("Failed to close Redis connection: %v", err)
		}
	}

	a.Sugar.Info("Argus stopped")
	_ = a.Logger.Sync()
}
