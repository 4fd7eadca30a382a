// Worker controller: owns the worker lifecycle, verifies the channel, and
// re-publishes worker events as the public location stream.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldtrack/internal/channel"
	"fieldtrack/internal/platform"
	"fieldtrack/internal/store"
)

// DefaultGracePeriod is how long the controller waits after launching the
// worker before attaching listeners; commands sent earlier can be lost
// while the worker's loop is not yet pumping.
const DefaultGracePeriod = 2 * time.Second

// Launcher starts the worker execution unit for one launch. A returned
// error means the platform refused to bring the worker up.
type Launcher interface {
	Launch(ctx context.Context, ep *channel.Endpoint) error
}

// Config carries the controller's injected collaborators and timing.
type Config struct {
	DeviceID  string
	Authority platform.PermissionAuthority
	Service   platform.LocationService
	Notifier  platform.Notifier
	WakeLock  platform.WakeLock
	Store     store.Store
	Launcher  Launcher

	GracePeriod    time.Duration
	VerifyInterval time.Duration
	VerifyBackoff  time.Duration
	VerifyRetries  int

	Clock Clock
	Sched Scheduler
	Log   *slog.Logger
}

// Controller is the process-wide coordinator. Construct one per process;
// all methods are safe for concurrent use.
type Controller struct {
	cfg    Config
	log    *slog.Logger
	clock  Clock
	stream *stream
	verify *verifier

	mu        sync.Mutex
	state     WorkerState
	link      *channel.Link
	session   uuid.UUID
	lastKnown *store.LastFixRecord
	fixCount  uint64
}

// New builds a controller and seeds the last known fix from the store in
// the background, so a stale-but-present location is available before the
// worker produces a fresh one.
func New(cfg Config) *Controller {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Sched == nil {
		cfg.Sched = SystemScheduler()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	c := &Controller{
		cfg:    cfg,
		log:    cfg.Log,
		clock:  cfg.Clock,
		stream: newStream(),
		state:  Stopped,
	}
	c.verify = newVerifier(cfg.VerifyInterval, cfg.VerifyBackoff, cfg.VerifyRetries,
		cfg.Sched, c.probe, cfg.Log)

	go func() {
		rec, ok, err := cfg.Store.Load(context.Background())
		if err != nil {
			c.log.Warn("last fix load failed", "err", err)
			return
		}
		if !ok {
			return
		}
		c.mu.Lock()
		if c.lastKnown == nil {
			c.lastKnown = &rec
		}
		c.mu.Unlock()
	}()
	return c
}

// Start brings the worker up. It is idempotent: a second call while a
// launch exists observes it and returns true without launching again.
// Permission or service refusal fails fast with no state change.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	if c.state.active() {
		c.mu.Unlock()
		return true
	}
	c.state = Starting
	c.mu.Unlock()

	link, ok := c.bringUp(ctx)

	c.mu.Lock()
	interrupted := c.state != Starting
	if ok && !interrupted {
		c.state = Running
		c.link = link
		c.session = uuid.New()
	} else if !interrupted {
		c.state = Stopped
	}
	c.mu.Unlock()

	if interrupted {
		// A Stop raced the launch; undo the half-started worker.
		if ok {
			c.tearDown(link)
		}
		return false
	}
	if ok {
		c.verify.begin()
	}
	return ok
}

// bringUp performs the suspending part of Start outside the state lock.
func (c *Controller) bringUp(ctx context.Context) (*channel.Link, bool) {
	if !c.cfg.Authority.Granted(ctx) {
		granted, err := c.cfg.Authority.Request(ctx)
		if err != nil {
			c.log.Warn("permission request failed", "err", err)
			return nil, false
		}
		if !granted {
			c.log.Warn("location permission denied")
			return nil, false
		}
	}
	if err := c.cfg.Service.Enabled(ctx); err != nil {
		c.log.Warn("location service unavailable", "err", err)
		return nil, false
	}

	link := channel.New(uuid.New())
	if err := c.cfg.Launcher.Launch(ctx, link.Worker()); err != nil {
		c.log.Error("worker launch failed", "err", err)
		link.Close()
		return nil, false
	}

	c.cfg.WakeLock.Acquire()
	c.cfg.Notifier.Show("Location tracking active")

	// Give the worker's message loop time to come up before attaching.
	select {
	case <-c.clock.After(c.cfg.GracePeriod):
	case <-ctx.Done():
		c.log.Warn("start cancelled during grace period")
		c.tearDown(link)
		return nil, false
	}

	go c.readLoop(link)
	c.log.Info("worker launched", "launch", link.Launch(), "grace", c.cfg.GracePeriod)
	return link, true
}

// Stop is fire-and-forget: local subscriptions and timers are cancelled
// synchronously, the worker tears itself down on receipt of the command.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.state.active() {
		c.mu.Unlock()
		return
	}
	c.state = Stopping
	link := c.link
	c.link = nil
	c.mu.Unlock()

	c.verify.stop()
	if link != nil {
		c.tearDown(link)
	}
	c.stream.close()

	c.mu.Lock()
	if c.state == Stopping {
		c.state = Stopped
	}
	c.mu.Unlock()
	c.log.Info("tracking stopped")
}

func (c *Controller) tearDown(link *channel.Link) {
	if err := link.Controller().Send(channel.Stop()); err != nil {
		c.log.Warn("stop command not delivered", "err", err)
	}
	link.Close()
	c.cfg.WakeLock.Release()
	c.cfg.Notifier.Cancel()
}

// Pause keeps the worker sampling but suppresses fix events at the source.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return
	}
	c.sendLocked(channel.Pause())
	c.state = Paused
}

// Resume restores fix emission. A resume also restarts verification when
// the channel previously degraded, giving it a fresh chance to recover.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.state != Paused {
		c.mu.Unlock()
		return
	}
	c.sendLocked(channel.Resume())
	c.state = Running
	c.mu.Unlock()

	if c.verify.Health() == HealthDegraded {
		c.verify.begin()
	}
}

// SendHeartbeat tells the worker its consumer is still alive. Callers run
// this on a fixed interval; the worker self-stops after prolonged silence.
func (c *Controller) SendHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.active() {
		return
	}
	c.sendLocked(channel.Heartbeat())
}

// probe re-attaches and pings; listener attachment is cancel-then-resubscribe
// idempotent, so repeating it is safe at any point of the protocol.
func (c *Controller) probe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendLocked(channel.PingProbe())
}

func (c *Controller) sendLocked(m channel.Message) {
	if c.link == nil {
		return
	}
	if err := c.link.Controller().Send(m); err != nil {
		c.log.Warn("command send failed", "kind", m.Kind, "err", err)
	}
}

// readLoop consumes worker events for one launch.
func (c *Controller) readLoop(link *channel.Link) {
	ep := link.Controller()
	launch := link.Launch()
	for frame := range ep.Recv() {
		msg, err := channel.Decode(frame.Data)
		if err != nil {
			c.log.Warn("dropping malformed event", "err", err)
			continue
		}
		c.handleEvent(launch, msg)
	}
}

// handleEvent applies one worker event. Events count only while their
// launch is the current one: a closed link keeps buffered frames readable,
// so a retired read loop can still drain frames from a dead worker after
// Stop returned. Those must neither confirm verification nor touch state.
func (c *Controller) handleEvent(launch uuid.UUID, msg channel.Message) {
	c.mu.Lock()
	if c.link == nil || c.link.Launch() != launch {
		c.mu.Unlock()
		c.log.Warn("dropping event from retired launch", "launch", launch, "kind", msg.Kind)
		return
	}

	switch msg.Kind {
	case channel.KindFixReported:
		// A delivered event proves the channel end to end.
		c.verify.confirm()
		fix := *msg.Fix
		rec := store.LastFixRecord{Fix: fix, ReceivedAt: c.clock.Now().UTC()}
		c.lastKnown = &rec
		c.fixCount++
		c.mu.Unlock()
		// Refresh persistence in the same call that feeds subscribers, so
		// the store never lags behind the stream.
		if err := c.cfg.Store.Save(context.Background(), rec); err != nil {
			c.log.Warn("last fix save failed", "err", err)
		}
		c.stream.publish(fix)
	case channel.KindStatusReported:
		c.verify.confirm()
		c.mu.Unlock()
		c.log.Info("worker status", "running", msg.Running)
	default:
		c.mu.Unlock()
		c.log.Warn("dropping unexpected event", "kind", msg.Kind)
	}
}

// Subscribe attaches a consumer to the location stream.
func (c *Controller) Subscribe(buffer int) *Subscription {
	return c.stream.subscribe(buffer)
}

// Unsubscribe detaches a consumer and closes its channel.
func (c *Controller) Unsubscribe(sub *Subscription) {
	c.stream.unsubscribe(sub)
}

// State returns the controller-owned worker state.
func (c *Controller) State() WorkerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChannelHealth reports verification progress for the current launch.
func (c *Controller) ChannelHealth() Health {
	return c.verify.Health()
}

// LastKnown returns the most recent fix record, possibly seeded from the
// store before tracking started.
func (c *Controller) LastKnown() (store.LastFixRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown == nil {
		return store.LastFixRecord{}, false
	}
	return *c.lastKnown, true
}

// Status is a point-in-time snapshot for the admin surface.
type Status struct {
	State         string     `json:"state"`
	ChannelHealth string     `json:"channel_health"`
	Session       string     `json:"session,omitempty"`
	Launch        string     `json:"launch,omitempty"`
	FixCount      uint64     `json:"fix_count"`
	DroppedFrames uint64     `json:"dropped_frames"`
	DeviceID      string     `json:"device_id"`
	LastFixAt     *time.Time `json:"last_fix_at,omitempty"`
}

// StatusSnapshot assembles the current Status.
func (c *Controller) StatusSnapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:         c.state.String(),
		ChannelHealth: c.verify.Health().String(),
		FixCount:      c.fixCount,
		DeviceID:      c.cfg.DeviceID,
	}
	if c.link != nil {
		st.Launch = c.link.Launch().String()
		st.Session = c.session.String()
		st.DroppedFrames = c.link.Dropped()
	}
	if c.lastKnown != nil {
		t := c.lastKnown.ReceivedAt
		st.LastFixAt = &t
	}
	return st
}

// SessionID identifies the current tracking session, empty when stopped.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.active() {
		return ""
	}
	return c.session.String()
}

// DeviceID returns the configured device identity.
func (c *Controller) DeviceID() string { return c.cfg.DeviceID }

// Heartbeats sends a heartbeat every interval until ctx is done. Run it for
// as long as the consumer considers itself alive.
func (c *Controller) Heartbeats(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.SendHeartbeat()
		case <-ctx.Done():
			return
		}
	}
}
