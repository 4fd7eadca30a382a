// External collaborators of the tracking subsystem: permission authority,
// location service, foreground notification surface, and wake lock.
package platform

import (
	"context"
	"errors"
	"log/slog"

	"fieldtrack/internal/geo"
)

// PermissionAuthority answers whether location permission is held and can
// request it, suspending until the grant is decided.
type PermissionAuthority interface {
	Granted(ctx context.Context) bool
	Request(ctx context.Context) (bool, error)
}

// LocationService is the platform's positioning API.
type LocationService interface {
	// Enabled reports whether the service can deliver positions at all.
	Enabled(ctx context.Context) error
	// Subscribe starts the continuous position stream. The returned stop
	// function releases the subscription; the channel is closed afterwards.
	Subscribe(ctx context.Context) (<-chan geo.Fix, func(), error)
	// Current returns a single position without a standing subscription.
	Current(ctx context.Context) (geo.Fix, error)
}

// Notifier shows the user-visible notice some platforms require while
// background tracking runs.
type Notifier interface {
	Show(text string)
	Update(text string)
	Cancel()
}

// WakeLock keeps the device from suspending the tracking process.
type WakeLock interface {
	Acquire()
	Release()
}

// ErrServiceDisabled is returned by Enabled when positioning is off.
var ErrServiceDisabled = errors.New("platform: location service disabled")

// StaticAuthority is a config-driven authority: grant everything or deny
// everything. Request never prompts.
type StaticAuthority struct {
	Allow bool
}

func (a StaticAuthority) Granted(context.Context) bool { return a.Allow }

func (a StaticAuthority) Request(context.Context) (bool, error) { return a.Allow, nil }

// LogNotifier writes notification text to the log instead of a screen.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Show(text string)   { n.Log.Info("notification shown", "text", text) }
func (n LogNotifier) Update(text string) { n.Log.Info("notification updated", "text", text) }
func (n LogNotifier) Cancel()            { n.Log.Info("notification cancelled") }

// LogWakeLock records acquire/release transitions.
type LogWakeLock struct {
	Log *slog.Logger
}

func (w LogWakeLock) Acquire() { w.Log.Info("wake lock acquired") }
func (w LogWakeLock) Release() { w.Log.Info("wake lock released") }
