package locator

import (
	"context"
	"sync"
)

// bus fans snapshots out to subscribers. Publish never blocks and never
// loses the newest value: each subscriber has a one-slot mailbox, and a
// newer snapshot replaces one the subscriber has not read yet.
type bus struct {
	mu      sync.Mutex
	latest  Snapshot
	version uint64

	wake        chan struct{}
	subscribe   chan chan Snapshot
	unsubscribe chan chan Snapshot
	done        chan struct{}
}

func newBus(initial Snapshot) *bus {
	b := &bus{
		latest:      initial,
		version:     1,
		wake:        make(chan struct{}, 1),
		subscribe:   make(chan chan Snapshot),
		unsubscribe: make(chan chan Snapshot),
		done:        make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *bus) Publish(s Snapshot) {
	b.mu.Lock()
	b.latest = s
	b.version++
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *bus) current() (Snapshot, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.version
}

// Subscribe returns a channel that first holds the latest snapshot. It
// closes when ctx ends or the bus stops.
func (b *bus) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	select {
	case b.subscribe <- ch:
	case <-b.done:
		close(ch)
		return ch
	}

	go func() {
		select {
		case <-ctx.Done():
			select {
			case b.unsubscribe <- ch:
				close(ch)
			case <-b.done:
			}
		case <-b.done:
		}
	}()

	return ch
}

func (b *bus) Close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

// offer puts s in ch, replacing any value the reader has not taken yet.
// Only run sends on listener channels, so the loop ends once the slot is
// free.
func offer(ch chan Snapshot, s Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (b *bus) run() {
	// listeners maps each channel to the last version it was given.
	listeners := make(map[chan Snapshot]uint64)

	for {
		select {
		case ch := <-b.subscribe:
			s, v := b.current()
			offer(ch, s)
			listeners[ch] = v
		case ch := <-b.unsubscribe:
			delete(listeners, ch)
		case <-b.wake:
			s, v := b.current()
			for ch, seen := range listeners {
				if seen >= v {
					continue
				}
				offer(ch, s)
				listeners[ch] = v
			}
		case <-b.done:
			for ch := range listeners {
				close(ch)
			}
			return
		}
	}
}
