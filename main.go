package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inexabali-blip/calculator-nedvizhimosti/config"
	httpLayer "github.com/inexabali-blip/calculator-nedvizhimosti/http"
	"github.com/inexabali-blip/calculator-nedvizhimosti/repository"
	"github.com/inexabali-blip/calculator-nedvizhimosti/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	defaults := repository.BuiltinDefaults()
	if cfg.DefaultsPath != "" {
		loaded, err := repository.LoadDefaultsFromFile(cfg.DefaultsPath)
		if err != nil {
			logger.Warnf("Using built-in defaults: %v", err)
		} else {
			defaults = loaded
			logger.Infof("Loaded default inputs from %s", cfg.DefaultsPath)
		}
	}

	var cache repository.CacheRepository = repository.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warnf("Redis unavailable, falling back to in-memory cache: %v", err)
		} else {
			cache = redisCache
			logger.Infof("Caching results in redis at %s", cfg.RedisAddr)
		}
	}

	calculatorService := service.NewCalculatorService(
		cache,
		repository.NewStaticDefaults(defaults),
		cfg.CacheTTL,
		logger,
	)
	insightService := service.NewInsightService(service.InsightConfig{
		APIKey: cfg.OpenAIAPIKey,
		APIURL: cfg.OpenAIAPIURL,
		Model:  cfg.OpenAIModel,
	}, logger)
	reportService := service.NewReportService(calculatorService, insightService, cfg.DefaultLocale, logger)

	calculatorHandler := httpLayer.NewCalculatorHandler(calculatorService, reportService, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      httpLayer.NewRouter(calculatorHandler, rateLimiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
		return
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server exited")
}
