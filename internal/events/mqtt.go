package events

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTPublisher broadcasts resolution events to subscribed displays and
// companion apps over the mosque's MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

func NewMQTTPublisher(brokerURL, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client, topic: topic}, nil
}

var _ Publisher = (*MQTTPublisher)(nil)

// Publish hands the event to the broker without waiting for delivery, so a
// slow broker cannot stall the resolver's serving path.
func (p *MQTTPublisher) Publish(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode schedule event")
		return
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", p.topic).Msg("failed to publish schedule event")
		}
	}()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
