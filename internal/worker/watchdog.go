// Heartbeat liveness watchdog for the worker context
package worker

import "time"

// Stale reports whether the controller has gone silent: true once now is
// more than threshold past the last heartbeat. Kept as a pure function so
// the decision is testable without wall-clock time.
func Stale(now, lastHeartbeat time.Time, threshold time.Duration) bool {
	return now.Sub(lastHeartbeat) > threshold
}
