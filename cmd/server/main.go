package main

import (
	"context"                     // context package is needed for Redis operations
	"exam_system/internal/api"    // Custom package for API handlers
	"exam_system/internal/config" // Custom package for configuration
	"exam_system/internal/db"     // Database connection
	"exam_system/internal/utils"  // Token manager

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err) // Refuse to start with development secrets
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client, caching stays off when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, listing cache disabled")
	}

	tokens, err := utils.NewTokenManager(cfg)
	if err != nil {
		logrus.Fatalf("invalid JWT configuration: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.Deps{
		DB:          gdb,
		Redis:       redisClient,
		Tokens:      tokens,
		CacheTTL:    cfg.CacheTTL,
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {           // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
