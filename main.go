package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harvestchapel/testimony-live/handlers"
	"github.com/harvestchapel/testimony-live/internal/config"
	"github.com/harvestchapel/testimony-live/internal/database"
	"github.com/harvestchapel/testimony-live/internal/feed"
	"github.com/harvestchapel/testimony-live/internal/live"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/testimony/service"
	"github.com/harvestchapel/testimony-live/internal/watch"
	"github.com/harvestchapel/testimony-live/pkg/logger"
	"github.com/harvestchapel/testimony-live/pkg/metrics"
	"github.com/harvestchapel/testimony-live/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging first (LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple; production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early: rate limiter, live slot and cross-instance
	// change ticks all prefer it when configured.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Change-notification plumbing. With Redis, ticks travel via pub/sub so
	// every instance's subscribers re-read; without it the local bus suffices.
	testimonyBus := watch.NewBus()
	liveBus := watch.NewBus()
	var testimonyEvents watch.Publisher = testimonyBus
	var liveEvents watch.Publisher = liveBus
	if redisClient != nil {
		tb := watch.NewRedisBridge(redisClient, "testimony:changed", testimonyBus)
		lb := watch.NewRedisBridge(redisClient, "live:changed", liveBus)
		go tb.Run(ctx)
		go lb.Run(ctx)
		testimonyEvents = tb
		liveEvents = lb
	}

	// Storage: Mongo when configured (with startup-race retry), in-memory
	// fallback otherwise so dev runs work with no services at all.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mc, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				mongoClient = mc
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
	}

	var repo repository.Repository
	var serviceRepo repository.ServiceRepository
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		db := mongoClient.Database(cfg.MongoDB.Database)
		repo = repository.NewMongoRepo(db.Collection("testimonies"), testimonyEvents)
		serviceRepo = repository.NewMongoServiceRepo(db.Collection("services"), testimonyEvents)
	} else {
		logger.Warnf("no MongoDB available; using in-memory storage (data is lost on restart)")
		repo = repository.NewMemoryRepo(testimonyEvents)
		serviceRepo = repository.NewMemoryServiceRepo(testimonyEvents)
	}

	// Live slot: Redis preferred (hot, tiny), Mongo singleton collection as
	// fallback, memory last.
	var register live.Register
	switch {
	case redisClient != nil:
		register = live.NewRedisRegister(redisClient, "", liveEvents)
		logger.Infof("Using Redis for the live slot")
	case mongoClient != nil:
		register = live.NewMongoRegister(mongoClient.Database(cfg.MongoDB.Database).Collection("liveTestimony"), liveEvents)
	default:
		register = live.NewMemoryRegister(liveEvents)
	}

	svc := service.New(repo, serviceRepo, testimonyBus)
	liveSvc := live.New(register, liveBus)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint reports dependency state; in-memory fallbacks still count as ready
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo": mongoClient != nil,
			"redis": redisClient != nil,
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	api := r.Group("/api")

	// Optional rate limiting on the public submission endpoint
	if cfg.RateLimit.Enabled {
		var limiter gin.HandlerFunc
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limiter = middleware.RedisRateLimit(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limiter = middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
		api.Use(limiter)
	}

	handlers.NewTestimonyHandler(svc).Register(api)
	handlers.NewServiceHandler(svc).Register(api)
	handlers.NewLiveHandler(liveSvc).Register(api)
	handlers.NewPinHandler(cfg).Register(api)
	handlers.NewRSSHandler(liveSvc, feed.Options{
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
		Link:        cfg.Feed.SiteURL,
	}).Register(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting testimony service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
