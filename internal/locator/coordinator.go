// Package locator keeps one process-wide snapshot of where the device is,
// what its address is, and which prayer comes next.
//
// All state changes go through Coordinator. Each coordinate change starts a
// new generation; work belonging to an older generation is cancelled and
// its results are dropped at write time. Readers get immutable snapshots
// and never block on the network.
package locator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
	"github.com/smokyabdulrahman/prayer-locator/internal/notify"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

// Trigger says why a refresh was requested.
type Trigger int

const (
	Manual Trigger = iota
	Foreground
	Periodic
)

func (t Trigger) String() string {
	switch t {
	case Manual:
		return "manual"
	case Foreground:
		return "foreground"
	case Periodic:
		return "periodic"
	default:
		return "unknown"
	}
}

var (
	// ErrNoCoordinate is returned by Refresh before the first fix.
	ErrNoCoordinate = errors.New("no coordinate yet")
	// ErrPermissionDenied is returned for automatic refreshes while the
	// sensor permission is refused.
	ErrPermissionDenied = errors.New("location permission denied")
)

// Options tunes a Coordinator. Zero durations take the defaults below.
type Options struct {
	// MinDistance in metres a fix must move to start a new generation.
	MinDistance  float64
	RetryBackoff time.Duration // default 5s
	CallTimeout  time.Duration // default 10s
	FreshFor     time.Duration // default 10m
	// AlertLead schedules alerts this long before each event.
	AlertLead time.Duration
	// Timezone is passed to the provider; empty lets it decide.
	Timezone string
}

// Coordinator owns the snapshot.
type Coordinator struct {
	resolver  geocode.Resolver
	provider  prayer.Provider
	scheduler notify.Scheduler
	log       zerolog.Logger
	opts      Options

	// now is the clock; tests replace it.
	now func() time.Time

	snap atomic.Pointer[Snapshot]
	bus  *bus

	mu               sync.Mutex
	gen              uint64
	inflight         *flight
	permissionDenied bool
	closed           bool

	// schedMu serialises scheduler calls. armed records the days handed to
	// the scheduler and the generation that armed them.
	schedMu sync.Mutex
	armed   map[string]armedDay
	bg      sync.WaitGroup
}

type armedDay struct {
	day time.Time
	gen uint64
}

// flight is one logical resolution for one generation.
type flight struct {
	gen    uint64
	coord  geo.Coordinate
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle coordinator. scheduler may be nil.
func New(resolver geocode.Resolver, provider prayer.Provider, scheduler notify.Scheduler, opts Options, log zerolog.Logger) *Coordinator {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.FreshFor <= 0 {
		opts.FreshFor = 10 * time.Minute
	}
	if scheduler == nil {
		scheduler = notify.Nop{}
	}
	c := &Coordinator{
		resolver:  resolver,
		provider:  provider,
		scheduler: scheduler,
		log:       log,
		opts:      opts,
		now:       time.Now,
		bus:       newBus(Snapshot{}),
		armed:     make(map[string]armedDay),
	}
	c.snap.Store(&Snapshot{})
	return c
}

// Snapshot returns the current state with Next computed for this instant.
func (c *Coordinator) Snapshot() Snapshot {
	return c.snap.Load().withNext(c.now())
}

// Subscribe delivers the current snapshot and then every new one until ctx
// ends, when the channel is closed.
func (c *Coordinator) Subscribe(ctx context.Context) <-chan Snapshot {
	return c.bus.Subscribe(ctx)
}

// UpdateCoordinate feeds a sensor fix. A fix within MinDistance of the
// current coordinate, or at exactly the same point, is ignored. Otherwise a new generation starts,
// in-flight work is superseded, and resolution begins in the background.
func (c *Coordinator) UpdateCoordinate(coord geo.Coordinate) error {
	if err := coord.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	// A fix proves the sensor works again.
	if c.permissionDenied {
		c.permissionDenied = false
		c.store(func(s *Snapshot) { s.SensorErr = nil })
	}

	cur := c.snap.Load()
	if cur.HasCoordinate {
		if d := geo.Distance(cur.Coordinate, coord); d == 0 || d < c.opts.MinDistance {
			return nil
		}
	}

	c.gen++
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
	gen := c.gen
	c.store(func(s *Snapshot) {
		*s = Snapshot{
			Generation:    gen,
			Coordinate:    coord,
			HasCoordinate: true,
			SensorErr:     s.SensorErr,
		}
	})
	c.log.Debug().Uint64("generation", gen).Stringer("coordinate", coord).Msg("coordinate changed")
	c.disarmLocked(gen)
	c.startLocked(coord)
	return nil
}

// SensorFailed records a sensor error. PermissionDenied pauses automatic
// refresh until a new fix arrives or Reset is called.
func (c *Coordinator) SensorFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if geo.IsPermissionDenied(err) {
		c.permissionDenied = true
	}
	c.store(func(s *Snapshot) { s.SensorErr = err })
	c.log.Warn().Err(err).Msg("location sensor failed")
}

// Refresh re-resolves the current coordinate and waits for the result or
// for ctx to end. A refresh while one is in flight joins it. Foreground is
// a no-op while the snapshot is Ready and younger than FreshFor.
// Resolution failures are reported in the snapshot, not returned.
func (c *Coordinator) Refresh(ctx context.Context, trigger Trigger) error {
	f, err := c.refresh(trigger)
	if err != nil || f == nil {
		return err
	}
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh decides whether to join, skip, or start, without waiting.
func (c *Coordinator) refresh(trigger Trigger) (*flight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load()
	if !cur.HasCoordinate || c.closed {
		return nil, ErrNoCoordinate
	}
	if c.permissionDenied && trigger != Manual {
		return nil, ErrPermissionDenied
	}
	if c.inflight != nil && c.inflight.gen == c.gen {
		return c.inflight, nil
	}
	if trigger == Foreground && cur.Status == Ready && c.now().Sub(cur.UpdatedAt) < c.opts.FreshFor {
		return nil, nil
	}
	return c.startLocked(cur.Coordinate), nil
}

// Reset returns to the initial empty state, cancels any work and clears
// every scheduled alert.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
	c.permissionDenied = false
	gen := c.gen
	c.store(func(s *Snapshot) { *s = Snapshot{Generation: gen} })
	c.disarmLocked(gen)
}

// Close cancels in-flight work and closes every subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
	c.mu.Unlock()
	c.bg.Wait()
	c.bus.Close()
}

// startLocked launches a flight for the current generation. c.mu must be held.
func (c *Coordinator) startLocked(coord geo.Coordinate) *flight {
	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{gen: c.gen, coord: coord, cancel: cancel, done: make(chan struct{})}
	c.inflight = f
	go c.run(ctx, f)
	return f
}

// store swaps in a modified copy of the snapshot. c.mu must be held.
func (c *Coordinator) store(mutate func(*Snapshot)) {
	next := *c.snap.Load()
	mutate(&next)
	c.snap.Store(&next)
	c.bus.Publish(next.withNext(c.now()))
}

func (c *Coordinator) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// commit applies mutate only if gen is still current.
func (c *Coordinator) commit(gen uint64, mutate func(*Snapshot)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.store(mutate)
	return true
}

func (c *Coordinator) run(ctx context.Context, f *flight) {
	defer func() {
		f.cancel()
		c.mu.Lock()
		if c.inflight == f {
			c.inflight = nil
		}
		c.mu.Unlock()
		close(f.done)
	}()

	log := c.log.With().Uint64("generation", f.gen).Stringer("coordinate", f.coord).Logger()

	if !c.commit(f.gen, func(s *Snapshot) {
		s.Status = Resolving
		s.Loading = true
		s.Address.Status = Resolving
		s.Times.Status = Resolving
	}) {
		return
	}

	addr, addrErr := c.resolve(ctx, log, f.coord)
	if ctx.Err() != nil {
		return
	}
	if !c.commit(f.gen, func(s *Snapshot) {
		if addrErr == nil {
			s.Address = AddressFacet{Status: Ready, Address: &addr}
			return
		}
		s.Address.Status = Failed
		s.Address.Err = addrErr
		if !geocode.KindOf(addrErr).Retryable() {
			s.Address.Address = nil
		}
	}) {
		return
	}

	loc := prayer.Location{Coordinate: f.coord, City: addr.City, Country: addr.Country, Timezone: c.opts.Timezone}
	now := c.now()
	today, tomorrow, timesErr := c.events(ctx, loc, now)
	if ctx.Err() != nil {
		return
	}
	if timesErr != nil {
		log.Warn().Err(timesErr).Msg("prayer times unavailable")
	}

	committed := c.commit(f.gen, func(s *Snapshot) {
		if timesErr == nil {
			s.Times = TimesFacet{Status: Ready, Today: today, Tomorrow: tomorrow}
		} else {
			s.Times.Status = Failed
			s.Times.Err = timesErr
		}
		s.settle()
		s.UpdatedAt = now
	})
	if !committed || timesErr != nil {
		return
	}

	c.schedule(ctx, log, f.gen, now, today, tomorrow)
}

// resolve calls the resolver with one retry for transient failures.
func (c *Coordinator) resolve(ctx context.Context, log zerolog.Logger, coord geo.Coordinate) (geocode.Address, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(c.opts.RetryBackoff)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return geocode.Address{}, lastErr
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
		addr, err := c.resolver.Resolve(callCtx, coord)
		cancel()
		if err == nil {
			return addr, nil
		}
		lastErr = err

		kind := geocode.KindOf(err)
		log.Warn().Err(err).Stringer("kind", kind).Int("attempt", attempt+1).Msg("reverse geocoding failed")
		if !kind.Retryable() {
			break
		}
	}
	return geocode.Address{}, lastErr
}

// events fetches today's and tomorrow's events. Tomorrow only feeds the
// midnight rollover, so its failure is logged and tolerated.
func (c *Coordinator) events(ctx context.Context, loc prayer.Location, now time.Time) ([]prayer.Event, []prayer.Event, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	today, err := c.provider.Events(callCtx, loc, now)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	callCtx, cancel = context.WithTimeout(ctx, c.opts.CallTimeout)
	tomorrow, err := c.provider.Events(callCtx, loc, now.AddDate(0, 0, 1))
	cancel()
	if err != nil {
		c.log.Warn().Err(err).Msg("tomorrow's prayer times unavailable")
		tomorrow = nil
	}
	return today, tomorrow, nil
}

// schedule hands upcoming alerts to the scheduler if gen is still
// current. Failures are logged only.
func (c *Coordinator) schedule(ctx context.Context, log zerolog.Logger, gen uint64, now time.Time, today, tomorrow []prayer.Event) {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if ctx.Err() != nil || !c.current(gen) {
		return
	}

	days := []struct {
		day    time.Time
		events []prayer.Event
	}{
		{now, today},
		{now.AddDate(0, 0, 1), tomorrow},
	}
	for _, d := range days {
		if d.events == nil {
			continue
		}
		alerts := notify.BuildAlerts(d.events, now, c.opts.AlertLead)
		callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
		err := c.scheduler.ScheduleAlerts(callCtx, d.day, alerts)
		cancel()
		key := notify.DayKey(d.day)
		c.armed[key] = armedDay{day: d.day, gen: gen}
		if err != nil {
			log.Error().Err(err).Str("day", key).Msg("failed to schedule alerts")
		}
	}
}

// disarmLocked clears, in the background, every day armed by a generation
// older than gen. c.mu must be held.
func (c *Coordinator) disarmLocked(gen uint64) {
	if c.closed {
		return
	}
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.disarm(gen)
	}()
}

func (c *Coordinator) disarm(gen uint64) {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	for key, a := range c.armed {
		if a.gen >= gen {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.CallTimeout)
		err := c.scheduler.ScheduleAlerts(ctx, a.day, nil)
		cancel()
		if err != nil {
			c.log.Error().Err(err).Str("day", key).Msg("failed to clear alerts")
		}
		delete(c.armed, key)
	}
}
