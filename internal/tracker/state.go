// Controller-owned lifecycle state
package tracker

// WorkerState is the controller's view of the worker lifecycle. A fresh
// process always starts Stopped; the state is never persisted.
type WorkerState int

const (
	Stopped WorkerState = iota
	Starting
	Running
	Paused
	Stopping
)

var stateNames = map[WorkerState]string{
	Stopped:  "stopped",
	Starting: "starting",
	Running:  "running",
	Paused:   "paused",
	Stopping: "stopping",
}

func (s WorkerState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// active reports whether a worker launch exists for this state, including
// one still being brought up or torn down. Start must not launch a second
// worker while either transition is in flight.
func (s WorkerState) active() bool {
	return s == Starting || s == Running || s == Paused || s == Stopping
}

// Health describes channel verification progress.
type Health int

const (
	HealthUnknown Health = iota
	HealthProbing
	HealthVerified
	HealthDegraded
)

var healthNames = map[Health]string{
	HealthUnknown:  "unknown",
	HealthProbing:  "probing",
	HealthVerified: "verified",
	HealthDegraded: "degraded",
}

func (h Health) String() string {
	if n, ok := healthNames[h]; ok {
		return n
	}
	return "unknown"
}
