package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"comptes/internal/amqp"
	"comptes/internal/backend"
	"comptes/internal/cache"
	"comptes/internal/cli"
	"comptes/internal/datasource"
	apphttp "comptes/internal/http"
	applog "comptes/internal/log"
	"comptes/internal/ui"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger, nil).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	data := datasource.New(result.Backend, datasource.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, logger)
	views := ui.NewStore(cfg.CacheSize*8, cfg.SessionTTL)

	cacheManager := cache.NewManager()
	data.RegisterCaches(cacheManager)
	cacheManager.Register("views", views.Cache())
	cacheManager.StartCleanup(5 * time.Minute)

	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		instanceID := uuid.NewString()
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, instanceID)
		if err != nil {
			logger.Error("Failed to connect to AMQP, continuing without cross-replica invalidation",
				applog.FieldError, err)
			broker = nil
		} else {
			data.SetBroadcaster(broker)
			logger.Info("Cross-replica invalidation enabled",
				"exchange", cfg.AMQPExchange,
				"instance_id", instanceID)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, data, views, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if broker != nil {
			if err := broker.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	if broker != nil {
		go func() {
			err := broker.ConsumeInvalidations(ctx, func(msg *amqp.InvalidationMessage) error {
				applied := data.ApplyRemoteInvalidation(msg.Views)
				logger.Debug("Applied remote invalidation",
					"origin", msg.Origin,
					applog.FieldViews, msg.Views,
					"applied", applied)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Invalidation consumer stopped", applog.FieldError, err)
			}
		}()
	}

	logger.Info("Starting comptes server",
		"port", cfg.Port,
		"backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
