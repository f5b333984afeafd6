package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/pcbvalues/internal/adapters/http/api"
	"github.com/okian/pcbvalues/internal/adapters/http/site"
	"github.com/okian/pcbvalues/internal/adapters/http/swagger"
	"github.com/okian/pcbvalues/internal/adapters/repository"
	app "github.com/okian/pcbvalues/internal/app"
	"github.com/okian/pcbvalues/internal/config"
	"github.com/okian/pcbvalues/internal/dataset"
	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/okian/pcbvalues/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Keep the default Go collectors out; system metrics are custom.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	loggerInstance := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(); err != nil {
		loggerInstance.Warn(ctx, "ignoring unreadable .env", logger.Error(err))
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to load config", logger.Error(err))
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	ds, err := loadDataset(cfg)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to load dataset", logger.Error(err))
	}

	store, err := repository.OpenSQL(ctx, cfg.DatabaseDriver, cfg.DatabaseURL,
		repository.WithAxisCount(cfg.AxisCount),
		repository.WithLogger(loggerInstance.Named("store")),
	)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to open store", logger.String("driver", cfg.DatabaseDriver), logger.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			loggerInstance.Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	svc := newService(cfg, store, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildMux(ctx, cfg, ds, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("driver", cfg.DatabaseDriver),
			logger.Int("axes", ds.AxisCount()),
			logger.Int("questions", len(ds.Questions)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	loggerInstance.Info(ctx, "server stopped")
}

// loadDotEnv loads ./.env into the environment when present. Variables that
// are already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadDataset returns the configured dataset, or the embedded one, and checks
// that it matches the configured axis count.
func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	if cfg.DatasetDir == "" {
		ds, err = dataset.Default()
	} else {
		ds, err = dataset.LoadDir(cfg.DatasetDir)
	}
	if err != nil {
		return nil, err
	}
	if ds.AxisCount() != cfg.AxisCount {
		return nil, fmt.Errorf("%w: dataset has %d axes, axis_count is %d", config.ErrInvalidConfig, ds.AxisCount(), cfg.AxisCount)
	}
	return ds, nil
}

func newService(cfg *config.Config, store repository.Store, l logger.Logger) *app.Service {
	return app.New(store,
		app.WithLogger(l.Named("service")),
		app.WithAxisCount(cfg.AxisCount),
		app.WithWeights(cfg.Weights()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	)
}

func buildMux(ctx context.Context, cfg *config.Config, ds *dataset.Dataset, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux, ds, svc)
	api.NewServer(svc, svc, api.WithMatchLimit(cfg.MatchLimit)).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges GetStats does not already set.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if workers, ok := stats["workerCount"].(int); ok && stats["started"] == true {
		metrics.UpdateWorkerActiveCount(workers)
	}
}
