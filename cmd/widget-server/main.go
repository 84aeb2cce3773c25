// cmd/widget-server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"solution-creator/internal/common/config"
	"solution-creator/internal/common/database"
	"solution-creator/internal/common/logger"
	"solution-creator/internal/common/observability"
	sac "solution-creator/internal/widgets/presentation/architecture-creator"
)

const evictInterval = time.Minute

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

	var outputs []string
	if cfg.Logging.Output != "" {
		outputs = append(outputs, cfg.Logging.Output)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, outputs...)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting widget server...", zap.String("config", cfg.String()))

	obs := observability.New(cfg.Observability.ServiceName)
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	widgetCfg := sac.ConfigFrom(cfg)
	if err := widgetCfg.Validate(); err != nil {
		zapLog.Fatal("widget config invalid", zap.Error(err))
	}

	// --- In-flight guard ---
	guard := sac.NewLocalGuard()
	var ready func(context.Context) error
	if cfg.Guard.Backend == config.GuardBackendRedis {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		guard = sac.NewRedisGuard(redis, widgetCfg.GuardTTL)
		ready = redis.Ping
	}

	// --- Widget ---
	service := sac.NewService(sac.ServiceDependencies{
		Logger:        log,
		Observability: obs,
	}, widgetCfg)

	observer := sac.Observers{
		sac.NewLoggingObserver(log),
		sac.NewMetricsObserver(),
		sac.NewTelemetryObserver(obs),
	}

	presenter, err := sac.NewPresenter(widgetCfg, nil)
	if err != nil {
		zapLog.Fatal("presenter init failed", zap.Error(err))
	}

	sessionTTL := config.GetDuration(cfg.Server.SessionTTL)
	sessions := sac.NewSessionRegistry(sessionTTL, func(id string) *sac.Controller {
		return sac.NewController(widgetCfg, service,
			sac.WithSessionID(id),
			sac.WithStore(sac.NewStore()),
			sac.WithGuard(guard),
			sac.WithObserver(observer),
			sac.WithLogger(log),
		)
	}, log, sac.WithMaxSessions(cfg.Server.MaxSessions))
	go sessions.Run(ctx, evictInterval)

	handler := sac.NewHandler(sessions, presenter, log, sessionTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/", handler.Routes())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "guard unavailable")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("Widget server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("widget server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining submissions...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), widgetCfg.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down widget server", zap.Error(err))
	}

	zapLog.Info("Widget server stopped", zap.Int("sessions", sessions.Len()))
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
