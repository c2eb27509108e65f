// main is the entry point of the cadastro API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (SQLite or PostgreSQL)
//  4. Connect the event publisher when a broker is configured
//  5. Build the workflow engine and register the HTTP routes
//  6. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/cadastro-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/cadastro-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mls-workflow/cadastro-api/internal/config"
	"github.com/mls-workflow/cadastro-api/internal/events"
	"github.com/mls-workflow/cadastro-api/internal/events/amqp"
	"github.com/mls-workflow/cadastro-api/internal/http/handlers/cadastro"
	"github.com/mls-workflow/cadastro-api/internal/http/middleware"
	"github.com/mls-workflow/cadastro-api/internal/metrics"
	"github.com/mls-workflow/cadastro-api/internal/storage"
	"github.com/mls-workflow/cadastro-api/internal/storage/postgres"
	"github.com/mls-workflow/cadastro-api/internal/storage/sqlite"
	"github.com/mls-workflow/cadastro-api/internal/workflow"
)

var startTime = time.Now()

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad fatals on a missing file, a missing required value or an
	// unknown storage driver. If it returns, cfg is valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// SetDefault makes the package-level slog.Info calls in the handlers
	// use the same handler and level.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting cadastro-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.1.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// openStorage returns the storage.Storage interface, so nothing past
	// this point knows whether records live in SQLite or PostgreSQL.
	ctx := context.Background()

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Event Publisher ────────────────────────────────────────────────
	// Without events.amqp_url the engine gets a Nop publisher and record
	// changes are not announced anywhere.
	var publisher events.Publisher = events.Nop{}
	if cfg.Events.AMQPURL != "" {
		p, err := amqp.New(cfg.Events.AMQPURL, cfg.Events.Exchange, log)
		if err != nil {
			log.Error("failed to connect event publisher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	// ── 5. Metrics and Workflow Engine ────────────────────────────────────
	// A private registry instead of prometheus.DefaultRegisterer keeps
	// /metrics limited to what is registered here.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	engine := workflow.NewEngine(workflow.Config{
		Storage:   store,
		Instances: workflow.NewMemoryInstanceStore(cfg.Process.Retain),
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	})

	// ── 6. Register HTTP Routes ───────────────────────────────────────────
	// The handler functions are FACTORIES: they receive the engine (or the
	// store, for listing) once and return the per-request handler.
	// Every API route is wrapped in the same middleware chain.
	//
	// Route table:
	//   POST   /api/v1/cadastro                   create a record
	//   GET    /api/v1/cadastro                   list all records
	//   GET    /api/v1/cadastro/{id}              get one record
	//   PUT    /api/v1/cadastro/{id}              merge fields into a record
	//   DELETE /api/v1/cadastro/{id}              delete a record
	//   POST   /api/cadastro/process              legacy: run any operation
	//   GET    /api/cadastro/process/{instanceId} legacy: fetch the outcome
	router := http.NewServeMux()
	chain := middleware.Chain(
		middleware.Recovery(log),
		middleware.Logging(log, m),
	)

	router.Handle("POST /api/v1/cadastro", chain(cadastro.New(engine)))
	router.Handle("GET /api/v1/cadastro", chain(cadastro.GetList(store)))
	router.Handle("GET /api/v1/cadastro/{id}", chain(cadastro.GetByID(engine)))
	router.Handle("PUT /api/v1/cadastro/{id}", chain(cadastro.Update(engine)))
	router.Handle("DELETE /api/v1/cadastro/{id}", chain(cadastro.Delete(engine)))
	router.Handle("POST /api/cadastro/process", chain(cadastro.StartProcess(engine)))
	router.Handle("GET /api/cadastro/process/{instanceId}", chain(cadastro.GetProcess(engine)))

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	router.Handle("GET /metrics", m.Handler())

	// ── 7. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 8. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks, so it runs in its own goroutine and main
	// goes on to wait for a signal.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 9. Wait for Shutdown Signal ───────────────────────────────────────
	// Buffered so the signal is not dropped if main is not yet receiving.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	// Shutdown stops accepting connections and waits up to 5s for
	// in-flight requests. The deferred Close calls then release the
	// publisher and the store.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openStorage picks the record store implementation for the configured
// driver.
func openStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite3, config.DriverSQLite:
		lite, err := sqlite.New(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev: human-readable text at DEBUG. staging: JSON at DEBUG.
// prod: JSON at INFO.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
