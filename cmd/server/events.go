package main

import (
	"log"

	"github.com/masjidsuite/minaret/internal/config"
	"github.com/masjidsuite/minaret/internal/events"
)

// InitEventSink builds the resolution event stream: always the structured
// log, plus the MQTT broadcast when a broker is configured.
func InitEventSink(cfg *config.Config) events.Publisher {
	sinks := events.Multi{events.LogPublisher{}}

	if cfg.MQTTBroker != "" {
		publisher, err := events.NewMQTTPublisher(cfg.MQTTBroker, "minaret-server", cfg.MQTTTopic)
		if err != nil {
			// the event stream is diagnostics, not a serving dependency
			log.Printf("MQTT publisher unavailable: %v", err)
		} else {
			log.Printf("Publishing schedule events to %s on %s", cfg.MQTTTopic, cfg.MQTTBroker)
			sinks = append(sinks, publisher)
		}
	}

	return sinks
}
