package tracker

import "time"

// Clock abstracts wall time so lifecycle logic runs under test without
// real delays.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler creates delayed, cancellable calls; the verification protocol
// is driven entirely through it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

// SystemScheduler returns a scheduler backed by time.AfterFunc.
func SystemScheduler() Scheduler { return realScheduler{} }
