package tracker

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

// manualScheduler captures scheduled calls so tests can fire them by hand.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.pending = append(s.pending, t)
	return t
}

// fire runs the oldest live timer and reports its delay.
func (s *manualScheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	s.mu.Lock()
	var next *manualTimer
	for len(s.pending) > 0 {
		next = s.pending[0]
		s.pending = s.pending[1:]
		if !next.stopped {
			break
		}
		next = nil
	}
	s.mu.Unlock()
	if next == nil {
		t.Fatal("no pending timer to fire")
	}
	next.f()
	return next.d
}

func (s *manualScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tm := range s.pending {
		if !tm.stopped {
			n++
		}
	}
	return n
}

func newTestVerifier(sched *manualScheduler, probes *int) *verifier {
	return newVerifier(3*time.Second, time.Second, 3, sched,
		func() { *probes++ }, slog.New(slog.DiscardHandler))
}

func TestVerifierConfirmWithinWindow(t *testing.T) {
	sched := &manualScheduler{}
	probes := 0
	v := newTestVerifier(sched, &probes)

	v.begin()
	if got := v.Health(); got != HealthProbing {
		t.Fatalf("health after begin = %s", got)
	}
	if probes != 1 {
		t.Fatalf("probes = %d, want 1", probes)
	}

	v.confirm()
	if got := v.Health(); got != HealthVerified {
		t.Fatalf("health after confirm = %s", got)
	}

	// The armed window must not fire a retry once verified.
	if sched.live() != 0 {
		t.Fatalf("live timers after confirm = %d", sched.live())
	}
}

func TestVerifierRetriesWithLinearBackoff(t *testing.T) {
	sched := &manualScheduler{}
	probes := 0
	v := newTestVerifier(sched, &probes)

	v.begin()
	for retry := 1; retry <= 3; retry++ {
		// Window elapses with no event; a backoff timer is armed.
		if d := sched.fire(t); d != 3*time.Second {
			t.Fatalf("retry %d window = %v", retry, d)
		}
		if got := v.Health(); got != HealthProbing {
			t.Fatalf("health during retry %d = %s", retry, got)
		}
		// Backoff grows linearly with each attempt.
		if d := sched.fire(t); d != time.Duration(retry)*time.Second {
			t.Fatalf("retry %d backoff = %v", retry, d)
		}
	}
	if probes != 4 {
		t.Fatalf("probes = %d, want 4 (initial + 3 retries)", probes)
	}

	// Budget exhausted: the next silent window degrades the channel.
	sched.fire(t)
	if got := v.Health(); got != HealthDegraded {
		t.Fatalf("health after exhausted budget = %s", got)
	}
}

func TestVerifierConfirmDuringRetryRecovers(t *testing.T) {
	sched := &manualScheduler{}
	probes := 0
	v := newTestVerifier(sched, &probes)

	v.begin()
	sched.fire(t) // window elapses, retry armed

	v.confirm()
	if got := v.Health(); got != HealthVerified {
		t.Fatalf("health = %s", got)
	}
	if sched.live() != 0 {
		t.Fatalf("live timers after confirm = %d", sched.live())
	}
}

func TestVerifierBeginResetsDegraded(t *testing.T) {
	sched := &manualScheduler{}
	probes := 0
	v := newTestVerifier(sched, &probes)

	v.begin()
	for sched.live() > 0 {
		sched.fire(t)
	}
	if got := v.Health(); got != HealthDegraded {
		t.Fatalf("health = %s", got)
	}

	// A fresh round restores the full retry budget.
	v.begin()
	if got := v.Health(); got != HealthProbing {
		t.Fatalf("health after restart = %s", got)
	}
	v.confirm()
	if got := v.Health(); got != HealthVerified {
		t.Fatalf("health after recovery = %s", got)
	}
}

func TestVerifierStopReturnsToUnknown(t *testing.T) {
	sched := &manualScheduler{}
	probes := 0
	v := newTestVerifier(sched, &probes)

	v.begin()
	v.stop()
	if got := v.Health(); got != HealthUnknown {
		t.Fatalf("health after stop = %s", got)
	}
	// Stale timers from the cancelled round must be inert.
	for sched.live() > 0 {
		sched.fire(t)
	}
	if got := v.Health(); got != HealthUnknown {
		t.Fatalf("stale timer mutated health to %s", got)
	}
}
