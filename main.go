package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clip-relay/internal/handlers"
	"clip-relay/internal/history"
	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
	"clip-relay/internal/middleware"
	"clip-relay/internal/pipeline"
	"clip-relay/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Mirror logs to the flat file under the cache root
	if err := logging.SetFileSink(config.LogFilePath); err != nil {
		logging.Warn("Log file unavailable, console only: %v", err)
	}
	defer logging.CloseFileSink()

	startup.CheckTools()

	// Initialize request history (optional; the relay runs without it)
	var store *history.Store
	store, err = history.New(context.Background(), config.HistoryPath)
	if err != nil {
		logging.Warn("Request history disabled: %v", err)
		store = nil
	} else {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Warn("Failed to close history store: %v", err)
			}
		}()
	}

	// Initialize the relay pipeline
	pipe := pipeline.New(config, store)

	// Initialize handlers
	h := handlers.New(config, pipe, store)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Create server. WriteTimeout stays 0: a relay response is small
	// but the handler keeps running the pipeline after writing it.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Serve metrics on their own port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, pipe)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Relay paths embed full media URLs, so the "//" after the scheme
	// must survive routing untouched. Default path cleaning would 301
	// such requests to a collapsed "https:/..." form that can never
	// match the allow-list.
	r.SkipClean(true)
	r.UseEncodedPath()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Request history API
	r.HandleFunc("/api/history", h.GetHistory).Methods("GET")

	// Display name cookie
	r.HandleFunc("/set-username", h.SetUsername).Methods("POST")

	// Everything else is a relay request with the media URL in the path
	r.PathPrefix("/").HandlerFunc(h.Relay)

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, pipe *pipeline.Pipeline) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Draining in-flight pipelines")
	if pipe.Drain(25 * time.Second) {
		startup.LogShutdownStepComplete("Pipelines drained")
	} else {
		logging.Warn("Shutdown proceeding with pipelines still in flight")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
