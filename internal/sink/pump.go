package sink

import (
	"context"
	"time"

	"fieldtrack/internal/logging"
	"fieldtrack/internal/tracker"
)

// Pump drains a location-stream subscription into a writer until the
// subscription closes or ctx is done. Each fix is stamped with the
// controller's device and session identity.
func Pump(ctx context.Context, ctrl *tracker.Controller, sub *tracker.Subscription, writer FixWriter) {
	log := logging.FromContext(ctx)
	for {
		select {
		case fix, ok := <-sub.C:
			if !ok {
				return
			}
			row := fix.Row(ctrl.DeviceID(), ctrl.SessionID(), time.Now().UTC())
			if err := writer.Write(row); err != nil {
				log.Error("sink write failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
