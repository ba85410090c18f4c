package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/harvestchapel/testimony-live/handlers"
	"github.com/harvestchapel/testimony-live/internal/config"
	"github.com/harvestchapel/testimony-live/internal/database"
	"github.com/harvestchapel/testimony-live/internal/feed"
	"github.com/harvestchapel/testimony-live/internal/live"
	"github.com/harvestchapel/testimony-live/internal/watch"
	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// Feed-only entry point. Broadcast machines that only poll /rss can run
// this instead of the full API server; it shares the live register with
// the main process through Redis or Mongo but exposes no write routes.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	port := os.Getenv("FEED_PORT")
	if port == "" {
		port = "5002"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	ctx := context.Background()
	bus := watch.NewBus()

	// Prefer the shared Redis register; fall back to Mongo, then memory.
	// A memory register here always renders an empty feed, which is still
	// a valid document for the consumer.
	var reg live.Register
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis unreachable (%v), trying mongo", err)
		} else {
			reg = live.NewRedisRegister(client, "", bus)
		}
	}
	if reg == nil && cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Warnf("mongo unreachable (%v), using memory register", err)
		} else {
			col := client.Database(cfg.MongoDB.Database).Collection("liveTestimony")
			reg = live.NewMongoRegister(col, bus)
		}
	}
	if reg == nil {
		reg = live.NewMemoryRegister(bus)
	}

	svc := live.New(reg, bus)
	handlers.NewRSSHandler(svc, feed.Options{
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
		Link:        cfg.Feed.SiteURL,
	}).Register(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "feed", "time": time.Now().UTC()})
	})

	addr := fmt.Sprintf(":%s", port)
	logger.Infof("feed service listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
