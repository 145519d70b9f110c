// Package api exposes the Argus analysis engine over HTTP. It is a thin
// adapter: all domain logic lives in the analyzer and core packages.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"argus/analyzer"
	"argus/config"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterEntry holds a per-client rate limiter with last seen time.
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// API holds the HTTP server for the analysis service.
type API struct {
	router   *mux.Router
	server   *http.Server
	analyzer *analyzer.Analyzer
	config   *config.Config
	logger   *zap.SugaredLogger
	validate *validator.Validate

	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	stopCh         chan struct{}
}

// NewAPI creates the API server around an analyzer.
func NewAPI(a *analyzer.Analyzer, cfg *config.Config, logger *zap.SugaredLogger) *API {
	api := &API{
		router:       mux.NewRouter(),
		analyzer:     a,
		config:       cfg,
		logger:       logger,
		validate:     validator.New(),
		rateLimiters: make(map[string]*rateLimiterEntry),
		stopCh:       make(chan struct{}),
	}
	api.setupRoutes()
	go api.cleanupRateLimiters()
	return api
}

// setupRoutes registers middleware and routes.
func (a *API) setupRoutes() {
	a.router.Use(a.loggingMiddleware)
	a.router.Use(a.corsMiddleware)
	a.router.Use(a.rateLimitMiddleware)

	// OPTIONS is routed everywhere so preflights reach the CORS middleware.
	a.router.HandleFunc("/health", a.handleHealth).Methods("GET", "OPTIONS")
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := a.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/analyze", a.handleAnalyze).Methods("POST", "OPTIONS")
	v1.HandleFunc("/analyze/batch", a.handleBatchAnalyze).Methods("POST", "OPTIONS")
	v1.HandleFunc("/mitre/tactics", a.handleTactics).Methods("GET", "OPTIONS")
	v1.HandleFunc("/mitre/techniques", a.handleTechniques).Methods("GET", "OPTIONS")
	v1.HandleFunc("/mitre/techniques/search", a.handleSearchTechniques).Methods("GET", "OPTIONS")
	v1.HandleFunc("/correlation/record", a.handleRecord).Methods("POST", "OPTIONS")
	v1.HandleFunc("/correlation/clusters", a.handleClusters).Methods("GET", "OPTIONS")
	v1.HandleFunc("/stats", a.handleStats).Methods("GET", "OPTIONS")
}

// Router exposes the handler for tests.
func (a *API) Router() http.Handler {
	return a.router
}

// Start begins serving. It blocks until the server stops.
func (a *API) Start() error {
	addr := fmt.Sprintf(":%d", a.config.API.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  a.config.API.ReadTimeout,
		WriteTimeout: a.config.API.WriteTimeout,
	}

	a.logger.Infof("API server listening on %s", addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (a *API) Stop(ctx context.Context) error {
	close(a.stopCh)
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
