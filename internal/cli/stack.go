package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/config"
	"github.com/smokyabdulrahman/prayer-locator/internal/display"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/locator"
	"github.com/smokyabdulrahman/prayer-locator/internal/notify"
)

// stack is everything a long-running command needs around the coordinator.
type stack struct {
	coord   *locator.Coordinator
	sensor  geo.Sensor
	cronTab string
	timeout time.Duration
	closers []func()
}

type stackOptions struct {
	// PollInterval for IP geolocation when no coordinate is configured.
	PollInterval time.Duration
	AlertLead    time.Duration
	// Bell prints alerts to the terminal as they fire.
	Bell bool
}

// buildStack wires cache, provider, resolver, schedulers and sensor.
func buildStack(ctx context.Context, cfg *config.Config, opts stackOptions) (*stack, error) {
	rt := cfg.Runtime()
	s := &stack{cronTab: rt.RefreshCron, timeout: rt.CallTimeout * 4}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, closeStore)

	resolver, err := newResolver(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	schedulers := notify.Multi{}
	if opts.Bell {
		local := notify.NewLocalScheduler(func(a notify.Alert) {
			fmt.Printf("\a  %s  %s\n", display.Accent(a.Event.Name), a.Event.Time.Format("15:04"))
			logger.Info().Str("prayer", a.Event.Name).Time("at", a.Event.Time).Msg("prayer alert")
		})
		schedulers = append(schedulers, local)
		s.closers = append(s.closers, local.Stop)
	}
	if rt.MQTTBroker != "" {
		client, err := notify.ConnectMQTT(ctx, rt.MQTTBroker, "prayer-locator-"+rt.DeviceID, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		schedulers = append(schedulers, notify.NewMQTTScheduler(client, rt.MQTTTopic, rt.DeviceID, logger))
		s.closers = append(s.closers, func() { client.Disconnect(250) })
	}

	s.coord = locator.New(resolver, newProvider(cfg, store, selectedPrayers(cfg, "")), schedulers, locator.Options{
		MinDistance:  rt.MinDistance,
		RetryBackoff: rt.RetryBackoff,
		CallTimeout:  rt.CallTimeout,
		FreshFor:     rt.FreshFor,
		AlertLead:    opts.AlertLead,
	}, logger)
	s.closers = append(s.closers, s.coord.Close)

	if cfg.Latitude != 0 || cfg.Longitude != 0 {
		s.sensor = geo.StaticSensor{Coordinate: geo.Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}
	} else {
		s.sensor = geo.NewIPSensor(opts.PollInterval, rt.MinDistance)
	}
	return s, nil
}

// Start feeds the sensor into the coordinator and starts periodic refresh.
// Both stop when ctx ends or Close is called.
func (s *stack) Start(ctx context.Context) error {
	go locator.Follow(ctx, s.coord, s.sensor)

	ticker, err := locator.StartTicker(s.cronTab, s.coord, s.timeout, logger)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, ticker.Stop)
	return nil
}

// Close releases everything in reverse order of acquisition.
func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
