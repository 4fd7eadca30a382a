package tracker

import (
	"sync"
	"sync/atomic"

	"fieldtrack/internal/geo"
)

// Subscription is one consumer of the location stream. Fixes arrive on C;
// a consumer that falls behind loses fixes rather than blocking delivery
// to the others.
type Subscription struct {
	C <-chan geo.Fix

	ch      chan geo.Fix
	dropped atomic.Uint64
}

// Dropped reports fixes discarded because this subscriber was slow.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// stream fans fixes out to any number of subscribers.
type stream struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newStream() *stream {
	return &stream{subs: make(map[*Subscription]struct{})}
}

// subscribe registers a consumer with the given channel buffer.
func (s *stream) subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &Subscription{ch: make(chan geo.Fix, buffer)}
	sub.C = sub.ch
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

// unsubscribe removes a consumer and closes its channel.
func (s *stream) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.ch)
}

// publish delivers a fix to every subscriber without blocking.
func (s *stream) publish(fix geo.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.ch <- fix:
		default:
			sub.dropped.Add(1)
		}
	}
}

// close drops all subscribers.
func (s *stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		delete(s.subs, sub)
		close(sub.ch)
	}
}
