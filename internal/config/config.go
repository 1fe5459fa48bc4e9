package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	ServerAddress    string
	ScheduleEndpoint string
	FetchTimeout     time.Duration
	Strategy         string // "remote" or "cache"

	CacheBackend  string // "file" or "redis"
	CachePath     string
	RedisAddress  string
	RedisUsername string
	RedisPassword string
	RedisCacheKey string

	MQTTBroker string
	MQTTTopic  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// a .env file is a convenience for local development only
	_ = godotenv.Load()

	endpoint := os.Getenv("SCHEDULE_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("SCHEDULE_ENDPOINT is required")
	}

	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("FETCH_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT %q: %w", raw, err)
		}
		timeout = parsed
	}

	strategy := os.Getenv("SCHEDULE_STRATEGY")
	if strategy == "" {
		strategy = "remote"
	}
	if strategy != "remote" && strategy != "cache" {
		return nil, fmt.Errorf("SCHEDULE_STRATEGY must be \"remote\" or \"cache\", got %q", strategy)
	}

	backend := os.Getenv("CACHE_BACKEND")
	if backend == "" {
		backend = "file"
	}
	if backend != "file" && backend != "redis" {
		return nil, fmt.Errorf("CACHE_BACKEND must be \"file\" or \"redis\", got %q", backend)
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if backend == "redis" && redisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDRESS is required when CACHE_BACKEND is \"redis\"")
	}

	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		cachePath = "./data/schedule.json"
	}

	cacheKey := os.Getenv("REDIS_CACHE_KEY")
	if cacheKey == "" {
		cacheKey = "minaret:schedule"
	}

	topic := os.Getenv("MQTT_TOPIC")
	if topic == "" {
		topic = "masjid/schedule/events"
	}

	return &Config{
		ServerAddress:    addr,
		ScheduleEndpoint: endpoint,
		FetchTimeout:     timeout,
		Strategy:         strategy,
		CacheBackend:     backend,
		CachePath:        cachePath,
		RedisAddress:     redisAddr,
		RedisUsername:    os.Getenv("REDIS_USERNAME"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisCacheKey:    cacheKey,
		MQTTBroker:       os.Getenv("MQTT_BROKER"),
		MQTTTopic:        topic,
	}, nil
}
