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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esb"
	"github.com/kailas-cloud/esb/internal/config"
	logpkg "github.com/kailas-cloud/esb/internal/logger"
	"github.com/kailas-cloud/esb/internal/metrics"
	chiTransport "github.com/kailas-cloud/esb/internal/transport/chi"
	healthuc "github.com/kailas-cloud/esb/internal/usecase/health"
	"github.com/kailas-cloud/esb/internal/version"
)

func main() {
	// Optional .env; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting esb API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("engine_hosts", cfg.Engine.Hosts),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []esb.Option{
		esb.WithLogger(logger),
		esb.WithPrometheus(reg),
		esb.WithTimeout(time.Duration(cfg.Engine.TimeoutSec) * time.Second),
	}
	if cfg.Engine.Username != "" {
		opts = append(opts, esb.WithBasicAuth(cfg.Engine.Username, cfg.Engine.Password))
	}
	if cfg.Cache.Enabled {
		opts = append(opts,
			esb.WithRedisCache(cfg.Cache.Addrs, cfg.Cache.Password, time.Duration(cfg.Cache.TTLSec)*time.Second),
			esb.WithCacheDriver(esb.CacheDriver(cfg.Cache.Driver)),
			esb.WithCacheKeyPrefix(cfg.Cache.KeyPrefix),
		)
	}

	readyCtx, cancelReady := context.WithTimeout(context.Background(),
		time.Duration(cfg.Cache.ReadinessTimeout)*time.Second)
	client, err := esb.New(readyCtx, esb.Config{
		Hosts:   cfg.Engine.Hosts,
		Types:   cfg.Registry.Types,
		Indexes: cfg.Registry.Indexes,
	}, opts...)
	cancelReady()
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}
	defer client.Close()
	logger.Info("Search client ready",
		zap.String("base_url", client.BaseURL()),
		zap.Strings("kinds", client.Kinds()),
	)

	var cachePinger healthuc.Pinger
	if client.HasCache() {
		cachePinger = healthuc.PingFunc(client.PingCache)
	}
	healthSvc := healthuc.New(healthuc.PingFunc(client.Ping), cachePinger)

	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		logger.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	server := chiTransport.NewServer(client, healthSvc, reg, cfg.Scroll.KeepAlive, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.HTTP.CORSOrigins))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(httpMetrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx, reqLogger := logpkg.WithRequest(r.Context(), logger, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
