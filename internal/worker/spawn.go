package worker

import (
	"context"
	"log/slog"
	"time"

	"fieldtrack/internal/channel"
	"fieldtrack/internal/platform"
	"fieldtrack/internal/store"
)

// Spawner launches workers as goroutines. The worker's context is detached
// from the caller's so it can outlive the Start call; it ends on a Stop
// command, heartbeat silence, or process exit.
type Spawner struct {
	Service          platform.LocationService
	Store            store.Store
	Log              *slog.Logger
	WatchdogInterval time.Duration
	StaleAfter       time.Duration
}

// Launch starts one worker bound to the given endpoint.
func (s *Spawner) Launch(ctx context.Context, ep *channel.Endpoint) error {
	w := New(Config{
		Endpoint:         ep,
		Service:          s.Service,
		Store:            s.Store,
		Log:              s.Log,
		WatchdogInterval: s.WatchdogInterval,
		StaleAfter:       s.StaleAfter,
	})
	return w.Start(context.WithoutCancel(ctx))
}
