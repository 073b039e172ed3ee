package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/jobs"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/internal/server"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	scheduleCache, closeCache := newCache(logger, cfg.Cache)
	defer closeCache()

	calc := amortization.NewCalculator(logger, amortization.Arithmetic(cfg.Arithmetic))
	runner := jobs.NewRunner(logger, calc, jobs.Options{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
		Retention: cfg.JobRetention(),
	})
	defer runner.Close()

	srv := &http.Server{
		Addr: cfg.Address,
		Handler: server.NewHandler(logger, server.Options{
			MaxBodySize: cfg.BodySizeBytes(),
			Version:     version,
			Arithmetic:  calc.Arithmetic(),
			Cache:       scheduleCache,
			CacheTTL:    cfg.CacheTTL(),
			Runner:      runner,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.String("cache", cfg.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down cleanly",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// newCache builds the configured cache. A Redis server that does not answer
// at startup is logged and the memory cache is used instead.
func newCache(logger *zap.Logger, cfg server.CacheConfig) (cache.Cache, func()) {
	switch cfg.Backend {
	case server.CacheBackendNone:
		return nil, func() {}
	case server.CacheBackendRedis:
		redisCache := cache.NewRedisCache(cfg.Address, cfg.Password, cfg.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, using memory cache",
				zap.String("op", "main"),
				zap.String("address", cfg.Address),
				zap.Error(err),
			)
			_ = redisCache.Close()
			return cache.NewMemoryCache(), func() {}
		}
		return redisCache, func() {
			_ = redisCache.Close()
		}
	default:
		return cache.NewMemoryCache(), func() {}
	}
}
