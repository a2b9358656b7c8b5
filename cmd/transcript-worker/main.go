// cmd/transcript-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"transcript-workers/internal/common/aws"
	"transcript-workers/internal/common/camunda"
	"transcript-workers/internal/common/config"
	"transcript-workers/internal/common/database"
	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/common/nlu"
	"transcript-workers/internal/common/observability"
	"transcript-workers/internal/extraction"
	"transcript-workers/internal/review"
	"transcript-workers/internal/store"

	ln "transcript-workers/internal/workers/intake/lookup-normalization"
	nt "transcript-workers/internal/workers/intake/normalize-transcript"
	"transcript-workers/pkg/registry"
)

const activityRegistryPath = "configs/activities.json"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("starting transcript worker", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New("transcript-worker")
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	resultStore := store.NewPostgresResultStore(pg.DB)
	if err := resultStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("failed to prepare result table", zap.Error(err))
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()

	resultCache := store.NewRedisResultCache(rdb.Client, time.Duration(cfg.Results.CacheTTL)*time.Second)

	// --- Review notifications ---
	var notifier *review.Notifier
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		notifier = review.NewNotifier(snsClient, cfg.Notifications.SNS.TopicARN, log)
	}

	// --- Engine + NLU ---
	engine := extraction.NewEngine(engineConfig(cfg), log)
	nluClient := nlu.NewClient(&nlu.Config{
		Endpoint:        cfg.NLU.Endpoint,
		AppID:           cfg.NLU.AppID,
		SubscriptionKey: cfg.NLU.SubscriptionKey,
		Timeout:         config.GetDuration(cfg.NLU.Timeout),
		MaxRetries:      cfg.NLU.MaxRetries,
		Staging:         cfg.NLU.Staging,
		Verbose:         cfg.NLU.Verbose,
		TimezoneOffset:  cfg.NLU.TimezoneOffset,
	}, log)

	// --- Workers ---
	var workers []worker.JobWorker

	ntCfg := config.GetWorkerConfig(cfg, nt.TaskType)
	deps := nt.Dependencies{
		Engine:        engine,
		NLU:           nluClient,
		Store:         resultStore,
		Cache:         resultCache,
		Observability: obs,
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	ntHandler := nt.NewHandler(&nt.Config{Timeout: config.GetDuration(ntCfg.Timeout)}, deps, log)
	if jw := camunda.StartWorker(zeebe.GetClient(), nt.TaskType, ntCfg, ntHandler, log); jw != nil {
		workers = append(workers, jw)
	}

	lnCfg := config.GetWorkerConfig(cfg, ln.TaskType)
	lnHandler := ln.NewHandler(&ln.Config{Timeout: config.GetDuration(lnCfg.Timeout)}, resultStore, resultCache, log)
	if jw := camunda.StartWorker(zeebe.GetClient(), ln.TaskType, lnCfg, lnHandler, log); jw != nil {
		workers = append(workers, jw)
	}

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	activities, err := registry.LoadRegistry(activityRegistryPath)
	if err != nil {
		zapLog.Warn("activity registry unavailable", zap.Error(err))
	} else if missing := activities.Missing(nt.TaskType, ln.TaskType); len(missing) > 0 {
		zapLog.Warn("workers missing from activity registry", zap.Strings("taskTypes", missing))
	}

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler: newHealthMux(zeebe, pg, rdb, activities),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("transcript worker stopped gracefully")
}

func engineConfig(cfg *config.Config) extraction.Config {
	e := cfg.Entities
	return extraction.Config{
		MaxTextLength: cfg.Normalizer.MaxTextLength,
		MinYear:       cfg.Normalizer.MinYear,
		Names: extraction.EntityNames{
			DateTime: e.DateTime,
			Date:     e.Date,
			Time:     e.Time,
			Person:   e.Person,
			Location: e.Location,
			City:     e.City,
			State:    e.State,
			Zipcode:  e.Zipcode,
		},
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newHealthMux(zeebe healthChecker, pg, rdb pinger, activities *registry.ActivityRegistry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		} {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		status := http.StatusOK
		checks["status"] = "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			checks["status"] = "not ready"
		}
		checks["time"] = time.Now().Format(time.RFC3339)
		writeStatus(w, status, checks)
	})
	mux.HandleFunc("/activities", func(w http.ResponseWriter, r *http.Request) {
		if activities == nil {
			http.Error(w, "activity registry not loaded", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(activities)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
