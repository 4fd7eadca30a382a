// Durable last-fix persistence
package store

import (
	"context"
	"time"

	"fieldtrack/internal/geo"
)

// LastFixRecord mirrors the most recent fix plus its receipt time. It is
// overwritten whole on every write; there is no history.
type LastFixRecord struct {
	Fix        geo.Fix   `json:"fix"`
	ReceivedAt time.Time `json:"received_at"`
}

// Store persists exactly one LastFixRecord. Save replaces the record
// atomically; Load reports ok=false when nothing has been saved yet.
type Store interface {
	Save(ctx context.Context, rec LastFixRecord) error
	Load(ctx context.Context) (LastFixRecord, bool, error)
}
