// Worker context: samples positions, persists them, and relays them over
// the channel while a heartbeat watchdog guards against an orphaned run.
package worker

import (
	"context"
	"log/slog"
	"time"

	"fieldtrack/internal/channel"
	"fieldtrack/internal/geo"
	"fieldtrack/internal/platform"
	"fieldtrack/internal/store"
)

// Default watchdog timing: three missed heartbeat intervals end the worker.
const (
	DefaultWatchdogInterval = 5 * time.Second
	DefaultStaleAfter       = 15 * time.Second
)

// Worker is the isolated execution unit. It owns one location subscription
// for its whole lifetime and writes its own persistence, so fixes survive
// even when the channel back to the controller is broken.
type Worker struct {
	endpoint *channel.Endpoint
	service  platform.LocationService
	store    store.Store
	log      *slog.Logger

	watchdogEvery time.Duration
	staleAfter    time.Duration
	now           func() time.Time

	paused bool // local mirror only; the controller owns WorkerState
}

// Config carries worker construction parameters.
type Config struct {
	Endpoint         *channel.Endpoint
	Service          platform.LocationService
	Store            store.Store
	Log              *slog.Logger
	WatchdogInterval time.Duration
	StaleAfter       time.Duration
	Now              func() time.Time
}

// New builds a worker, filling zero timing values with defaults.
func New(cfg Config) *Worker {
	w := &Worker{
		endpoint:      cfg.Endpoint,
		service:       cfg.Service,
		store:         cfg.Store,
		log:           cfg.Log,
		watchdogEvery: cfg.WatchdogInterval,
		staleAfter:    cfg.StaleAfter,
		now:           cfg.Now,
	}
	if w.watchdogEvery <= 0 {
		w.watchdogEvery = DefaultWatchdogInterval
	}
	if w.staleAfter <= 0 {
		w.staleAfter = DefaultStaleAfter
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w
}

// Start subscribes to the location service and spins the loop up in its
// own goroutine. A subscription error is a launch failure.
func (w *Worker) Start(ctx context.Context) error {
	fixes, stopSampling, err := w.service.Subscribe(ctx)
	if err != nil {
		return err
	}
	go w.loop(ctx, fixes, stopSampling)
	return nil
}

// Run is the blocking form of Start.
func (w *Worker) Run(ctx context.Context) error {
	fixes, stopSampling, err := w.service.Subscribe(ctx)
	if err != nil {
		return err
	}
	w.loop(ctx, fixes, stopSampling)
	return nil
}

// loop processes commands, fixes, and watchdog ticks until a Stop command,
// heartbeat silence, or ctx ends it.
func (w *Worker) loop(ctx context.Context, fixes <-chan geo.Fix, stopSampling func()) {
	defer stopSampling()

	lastBeat := w.now()
	ticker := time.NewTicker(w.watchdogEvery)
	defer ticker.Stop()

	w.log.Info("worker running", "launch", w.endpoint.Launch())
	for {
		select {
		case frame, ok := <-w.endpoint.Recv():
			if !ok {
				w.log.Info("worker channel closed")
				return
			}
			msg, err := channel.Decode(frame.Data)
			if err != nil {
				w.log.Warn("dropping malformed command", "err", err)
				continue
			}
			switch msg.Kind {
			case channel.KindHeartbeat:
				lastBeat = w.now()
			case channel.KindPause:
				w.paused = true
			case channel.KindResume:
				w.paused = false
			case channel.KindPingProbe:
				w.send(channel.StatusReported(true))
			case channel.KindStop:
				w.send(channel.StatusReported(false))
				w.log.Info("worker stopped on command")
				return
			default:
				w.log.Warn("dropping unexpected command", "kind", msg.Kind)
			}

		case fix, ok := <-fixes:
			if !ok {
				w.log.Warn("location stream ended")
				return
			}
			w.handleFix(ctx, fix)

		case <-ticker.C:
			if Stale(w.now(), lastBeat, w.staleAfter) {
				w.log.Warn("heartbeat silence exceeded threshold, worker self-stopping",
					"stale_after", w.staleAfter)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleFix persists every fix and relays it unless paused. Persistence
// comes first: data capture must not depend on channel health.
func (w *Worker) handleFix(ctx context.Context, fix geo.Fix) {
	if err := fix.Validate(); err != nil {
		w.log.Warn("dropping invalid fix", "err", err)
		return
	}
	rec := store.LastFixRecord{Fix: fix, ReceivedAt: w.now().UTC()}
	if err := w.store.Save(ctx, rec); err != nil {
		w.log.Error("persist last fix failed", "err", err)
	}
	if w.paused {
		return
	}
	w.send(channel.FixReported(fix))
}

func (w *Worker) send(m channel.Message) {
	if err := w.endpoint.Send(m); err != nil {
		w.log.Warn("event send failed", "kind", m.Kind, "err", err)
	}
}
