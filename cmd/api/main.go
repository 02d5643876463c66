// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/tcxview/internal/analytics"
	"github.com/briangreenhill/tcxview/internal/config"
	"github.com/briangreenhill/tcxview/internal/db"
	"github.com/briangreenhill/tcxview/internal/http/routes"
	"github.com/briangreenhill/tcxview/internal/metrics"
	"github.com/briangreenhill/tcxview/internal/state"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Analytics: always logged, queued for the worker when Redis is configured
	sinks := analytics.Multi{analytics.LogSink{Log: logger.With().Str("component", "analytics").Logger()}}
	if cfg.HasQueue() {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("close asynq client")
			}
		}()
		queue := analytics.NewQueueSink(client, logger)
		defer queue.Wait()
		sinks = append(sinks, queue)
	}

	// DB, read side of the analytics store
	var events routes.Events
	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db error")
		}
		defer pool.Close()
		events = db.New(pool)
	}

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.Session.Lifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = cfg.Session.SecureCookie

	// Per-client UI state, forgotten with the session
	states := state.NewRegistry(sinks)
	go states.Run(ctx, time.Minute, cfg.Session.Lifetime)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:     sess,
		Q:        events,
		States:   states,
		Cfg:      cfg,
		Log:      logger,
		Metrics:  metrics.NewUploads(reg),
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Dur("processing_delay", cfg.Upload.ProcessingDelay).
		Bool("queue", cfg.HasQueue()).
		Bool("database", cfg.HasDatabase()).
		Msg("starting api")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}
