package tracker

import (
	"log/slog"
	"sync"
	"time"
)

// Verification protocol defaults: probe, wait, retry with linear backoff.
const (
	DefaultVerifyInterval = 3 * time.Second
	DefaultVerifyBackoff  = time.Second
	DefaultVerifyRetries  = 5
)

// verifier confirms that the channel actually delivers events. It probes
// the worker, arms a timer, and retries with a growing delay when nothing
// arrives. Exhausting the budget degrades rather than fails: the worker
// keeps sampling and persisting regardless of channel health.
//
// States: idle -> probing -> verified, or probing -> retrying(n) -> degraded.
type verifier struct {
	interval   time.Duration
	backoff    time.Duration
	maxRetries int
	sched      Scheduler
	log        *slog.Logger

	// probe re-attaches listeners and resends the ping; injected by the
	// controller so the verifier stays timer-only.
	probe func()

	mu      sync.Mutex
	health  Health
	retries int
	timer   Timer
	gen     int // invalidates timers from a cancelled round
}

func newVerifier(interval, backoff time.Duration, maxRetries int, sched Scheduler, probe func(), log *slog.Logger) *verifier {
	if interval <= 0 {
		interval = DefaultVerifyInterval
	}
	if backoff <= 0 {
		backoff = DefaultVerifyBackoff
	}
	if maxRetries <= 0 {
		maxRetries = DefaultVerifyRetries
	}
	return &verifier{
		interval:   interval,
		backoff:    backoff,
		maxRetries: maxRetries,
		sched:      sched,
		probe:      probe,
		log:        log,
		health:     HealthUnknown,
	}
}

// begin starts a fresh verification round: probe now, expect an event
// within the interval.
func (v *verifier) begin() {
	v.mu.Lock()
	v.cancelLocked()
	v.retries = 0
	v.health = HealthProbing
	gen := v.gen
	v.mu.Unlock()

	v.probe()
	v.arm(gen, v.interval)
}

// confirm records a delivered event: the channel is live, reset the budget.
func (v *verifier) confirm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.health == HealthVerified {
		return
	}
	v.cancelLocked()
	v.retries = 0
	if v.health == HealthDegraded {
		v.log.Info("channel recovered from degraded mode")
	}
	v.health = HealthVerified
}

// stop cancels any pending timer and returns to idle.
func (v *verifier) stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelLocked()
	v.health = HealthUnknown
}

// Health returns the current channel health.
func (v *verifier) Health() Health {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.health
}

func (v *verifier) arm(gen int, d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen || v.health == HealthVerified {
		return
	}
	v.timer = v.sched.AfterFunc(d, func() { v.onTimeout(gen) })
}

// onTimeout fires when the verification window passed with no event.
func (v *verifier) onTimeout(gen int) {
	v.mu.Lock()
	if gen != v.gen || v.health == HealthVerified {
		v.mu.Unlock()
		return
	}
	if v.retries >= v.maxRetries {
		v.health = HealthDegraded
		v.mu.Unlock()
		v.log.Warn("channel verification exhausted, tracking degraded",
			"retries", v.maxRetries)
		return
	}
	v.retries++
	retries := v.retries
	v.health = HealthProbing
	delay := time.Duration(retries) * v.backoff
	// After the backoff, re-attach and probe again, then rearm the window.
	v.timer = v.sched.AfterFunc(delay, func() {
		v.mu.Lock()
		if gen != v.gen || v.health == HealthVerified {
			v.mu.Unlock()
			return
		}
		v.mu.Unlock()
		v.probe()
		v.arm(gen, v.interval)
	})
	v.mu.Unlock()
	v.log.Info("no event within verification window, retrying",
		"retry", retries, "backoff", delay)
}

// cancelLocked stops the pending timer and invalidates in-flight callbacks.
func (v *verifier) cancelLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.gen++
}
