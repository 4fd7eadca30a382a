// Position fix value type shared across controller and worker
package geo

import (
	"errors"
	"time"
)

// Fix is a single position observation. Values are immutable once
// constructed; the timestamp is the source of truth for ordering.
type Fix struct {
	Latitude  float64
	Longitude float64
	Altitude  *float64
	Accuracy  *float64
	Timestamp time.Time
}

// NewFix builds a fix with optional altitude and accuracy (nil to omit).
func NewFix(lat, lon float64, alt, acc *float64, ts time.Time) Fix {
	return Fix{Latitude: lat, Longitude: lon, Altitude: alt, Accuracy: acc, Timestamp: ts}
}

// FixAt builds a bare lat/lon fix, mostly for tests and simulated sources.
func FixAt(lat, lon float64, ts time.Time) Fix {
	return Fix{Latitude: lat, Longitude: lon, Timestamp: ts}
}

var (
	ErrLatitudeRange  = errors.New("latitude out of range")
	ErrLongitudeRange = errors.New("longitude out of range")
	ErrNoTimestamp    = errors.New("fix has zero timestamp")
)

// Validate checks coordinate ranges and the presence of a timestamp.
func (f Fix) Validate() error {
	if f.Latitude < -90 || f.Latitude > 90 {
		return ErrLatitudeRange
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return ErrLongitudeRange
	}
	if f.Timestamp.IsZero() {
		return ErrNoTimestamp
	}
	return nil
}

// Float returns a pointer to v, for filling optional fix fields.
func Float(v float64) *float64 { return &v }
