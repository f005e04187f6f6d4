package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voyago/travel-planner-backend/internal/conf"
	multimodalai "github.com/voyago/travel-planner-backend/internal/multimodal/ai"
	multimodalbiz "github.com/voyago/travel-planner-backend/internal/multimodal/biz"
	multimodalservice "github.com/voyago/travel-planner-backend/internal/multimodal/service"
	"github.com/voyago/travel-planner-backend/internal/pkg/cache"
	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
	searchbiz "github.com/voyago/travel-planner-backend/internal/search/biz"
	"github.com/voyago/travel-planner-backend/internal/search/provider"
	searchservice "github.com/voyago/travel-planner-backend/internal/search/service"
	"github.com/voyago/travel-planner-backend/internal/search/types"
	"github.com/voyago/travel-planner-backend/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

var providerNames = map[types.ProviderID]string{
	types.ProviderAmadeus:    "Amadeus",
	types.ProviderSkyscanner: "Skyscanner",
	types.ProviderDuffel:     "Duffel",
	types.ProviderBooking:    "Booking.com",
}

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &config.Log
	if logConfig.Level == "" {
		logConfig = logger.DefaultConfig()
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Result cache: Redis when enabled, in-process LRU otherwise
	var (
		resultCache cache.Cache
		redisClient *goredis.Client
	)
	if config.Redis.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     config.Redis.Addr(),
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		cancel()

		resultCache = cache.NewRedisCache(redisClient, config.Cache.TTL, log)
		log.Info("using redis result cache", zap.String("addr", config.Redis.Addr()))
	} else {
		resultCache = cache.NewMemoryCache(config.Cache.MaxEntries, config.Cache.TTL)
		log.Info("using in-process result cache",
			zap.Int("max_entries", config.Cache.MaxEntries),
			zap.Duration("ttl", config.Cache.TTL))
	}

	// Build search providers from config
	factory := provider.NewFactory()
	providers := make([]provider.Provider, 0, len(config.Search.Providers))
	for id, pc := range config.Search.Providers {
		providerID := types.ProviderID(id)
		name := providerNames[providerID]
		if name == "" {
			name = id
		}

		p, err := factory.Create(&types.ProviderConfig{
			ID:         providerID,
			Name:       name,
			APIHost:    pc.APIHost,
			APIKey:     pc.APIKey,
			Timeout:    int(pc.Timeout / time.Second),
			MaxRetries: pc.MaxRetries,
		})
		if err != nil {
			log.Fatal("failed to create search provider",
				zap.String("provider", id),
				zap.Error(err))
		}

		providers = append(providers, p)
		log.Info("registered search provider",
			zap.String("provider", id),
			zap.Bool("available", p.IsAvailable(context.Background())))
	}

	// Use cases
	aggregator := searchbiz.NewAggregator(providers, resultCache, config.Search.Timeout, log)

	aiClient := multimodalai.New(&multimodalai.Config{
		APIKey:      config.OpenAI.APIKey,
		BaseURL:     config.OpenAI.BaseURL,
		Model:       config.OpenAI.Model,
		VisionModel: config.OpenAI.VisionModel,
		TTSVoice:    config.OpenAI.TTSVoice,
	}, log)
	orchestrator := multimodalbiz.NewOrchestrator(aiClient, resultCache, 0, log)

	// Services
	searchService := searchservice.NewSearchService(aggregator, log)
	multimodalService := multimodalservice.NewMultimodalService(orchestrator, log)

	rateLimiter := server.RateLimiter(redisClient, server.RateLimiterConfig{
		MaxRequests:   config.RateLimit.MaxRequests,
		WindowSeconds: config.RateLimit.WindowSeconds,
	}, log)

	httpServer := server.NewHTTPServer(config, log.Logger, searchService, multimodalService, rateLimiter)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	log.Info("server exited")
}
