package main

import (
	"log"

	"github.com/masjidsuite/minaret/internal/config"
	redisclient "github.com/masjidsuite/minaret/internal/redis"
	"github.com/masjidsuite/minaret/internal/schedule"
)

// InitCacheStore selects and returns the configured cache backend
func InitCacheStore(cfg *config.Config) schedule.CacheStore {
	if cfg.CacheBackend == "redis" {
		rdb, err := redisclient.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("failed to initialize redis cache: %v", err)
		}
		log.Printf("Using redis schedule cache at %s", cfg.RedisAddress)
		return schedule.NewRedisCacheStore(rdb, cfg.RedisCacheKey)
	}

	log.Printf("Using file schedule cache at %s", cfg.CachePath)
	return schedule.NewFileCacheStore(cfg.CachePath)
}
