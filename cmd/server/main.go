package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/masjidsuite/minaret/internal/config"
	"github.com/masjidsuite/minaret/internal/schedule"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// a broken bundled payload is a packaging defect; refuse to start on one
	if _, err := schedule.Bundled(); err != nil {
		log.Fatalf("bundled schedule: %v", err)
	}

	store := InitCacheStore(cfg)
	sink := InitEventSink(cfg)

	fetcher, err := schedule.NewHTTPFetcher(nil, cfg.ScheduleEndpoint)
	if err != nil {
		log.Fatalf("fetcher init: %v", err)
	}

	resolver := schedule.NewResolver(fetcher, store, sink, schedule.Options{
		Endpoint: cfg.ScheduleEndpoint,
		Timeout:  cfg.FetchTimeout,
		Strategy: strategyFromConfig(cfg.Strategy),
	})

	// set up gin router
	r := gin.Default()
	RegisterRoutes(r, resolver)

	// start
	log.Printf("listening on %s", cfg.ServerAddress)
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func strategyFromConfig(s string) schedule.Strategy {
	if s == "cache" {
		return schedule.StrategyPreferCache
	}
	return schedule.StrategyPreferRemote
}
