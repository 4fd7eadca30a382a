package geo

import (
	"encoding/json"
	"time"
)

// fixJSON is the wire shape of a fix: epoch milliseconds for the timestamp,
// optional fields omitted when absent.
type fixJSON struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// MarshalJSON encodes the fix with an epoch-millisecond timestamp.
func (f Fix) MarshalJSON() ([]byte, error) {
	return json.Marshal(fixJSON{
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		Altitude:  f.Altitude,
		Accuracy:  f.Accuracy,
		Timestamp: f.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON decodes the wire shape back into a fix.
func (f *Fix) UnmarshalJSON(data []byte) error {
	var raw fixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Fix{
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Altitude:  raw.Altitude,
		Accuracy:  raw.Accuracy,
		Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
	}
	return nil
}
