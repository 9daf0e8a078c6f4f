package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Publisher is the part of mqtt.Client the scheduler uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTScheduler publishes each day's alerts as one retained message on
// {prefix}/{device}/alerts/{YYYY-MM-DD}. The broker keeps only the newest
// retained message per topic, which gives replace-all semantics per day.
type MQTTScheduler struct {
	client Publisher
	prefix string
	device string
	qos    byte
	log    zerolog.Logger
}

// NewMQTTScheduler publishes through client.
func NewMQTTScheduler(client Publisher, prefix, device string, log zerolog.Logger) *MQTTScheduler {
	return &MQTTScheduler{client: client, prefix: prefix, device: device, qos: 1, log: log}
}

// DayPayload is the retained message body.
type DayPayload struct {
	Device      string    `json:"device"`
	Day         string    `json:"day"`
	GeneratedAt time.Time `json:"generated_at"`
	Alerts      []Alert   `json:"alerts"`
}

// Topic returns the retained topic for day.
func (s *MQTTScheduler) Topic(day time.Time) string {
	return fmt.Sprintf("%s/%s/alerts/%s", s.prefix, s.device, DayKey(day))
}

func (s *MQTTScheduler) ScheduleAlerts(ctx context.Context, day time.Time, alerts []Alert) error {
	if alerts == nil {
		alerts = []Alert{}
	}
	payload, err := json.Marshal(DayPayload{
		Device:      s.device,
		Day:         DayKey(day),
		GeneratedAt: time.Now().UTC(),
		Alerts:      alerts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	topic := s.Topic(day)
	token := s.client.Publish(topic, s.qos, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publishing alerts to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing alerts to %s: %w", topic, err)
	}

	s.log.Debug().Str("topic", topic).Int("alerts", len(alerts)).Msg("alerts published")
	return nil
}

// ConnectMQTT connects to broker and logs connection state changes. The
// client reconnects on its own after the first successful connect.
func ConnectMQTT(ctx context.Context, broker, clientID string, log zerolog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, err)
	}
	return client, nil
}
