package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// rolloverSpec refreshes just after local midnight so today's events and
// tomorrow's rollover target move forward a day.
const rolloverSpec = "1 0 * * *"

// Ticker drives Periodic refreshes from a cron schedule.
type Ticker struct {
	cron *cron.Cron
}

// refresher is the part of Coordinator the ticker needs.
type refresher interface {
	Refresh(ctx context.Context, trigger Trigger) error
}

// StartTicker runs Periodic refreshes on spec (standard 5-field cron or a
// descriptor such as "@every 15m") and once after every local midnight.
// Each run is bounded by timeout.
func StartTicker(spec string, r refresher, timeout time.Duration, log zerolog.Logger) (*Ticker, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	job := func(reason string) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			err := r.Refresh(ctx, Periodic)
			switch {
			case err == nil:
				log.Debug().Str("reason", reason).Msg("periodic refresh done")
			case errors.Is(err, ErrNoCoordinate), errors.Is(err, ErrPermissionDenied):
				log.Debug().Err(err).Str("reason", reason).Msg("periodic refresh skipped")
			default:
				log.Warn().Err(err).Str("reason", reason).Msg("periodic refresh did not finish")
			}
		}
	}

	if _, err := c.AddFunc(spec, job("schedule")); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	if _, err := c.AddFunc(rolloverSpec, job("midnight")); err != nil {
		return nil, err
	}

	c.Start()
	return &Ticker{cron: c}, nil
}

// Stop halts the schedule and waits for a running refresh to return.
func (t *Ticker) Stop() {
	<-t.cron.Stop().Done()
}
