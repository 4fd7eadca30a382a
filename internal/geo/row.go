package geo

import (
	"os"
	"time"
)

// FixRow represents one recorded fix for the sink pipeline.
type FixRow struct {
	DeviceID   string    `json:"device_id"`  // TAG
	SessionID  string    `json:"session_id"` // TAG
	Lat        float64   `json:"lat"`        // FIELD
	Lon        float64   `json:"lon"`        // FIELD
	Alt        *float64  `json:"alt,omitempty"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Timestamp  time.Time `json:"ts"` // TIME INDEX
}

// FixTableName holds the table name used when writing fixes to GreptimeDB.
// It defaults to "survey_fixes" but can be overridden via the
// FIELDTRACK_TABLE environment variable.
var FixTableName = func() string {
	if env := os.Getenv("FIELDTRACK_TABLE"); env != "" {
		return env
	}
	return "survey_fixes"
}()

func (FixRow) TableName() string {
	return FixTableName
}

// Row stamps a fix with device and session identity for the sinks.
func (f Fix) Row(deviceID, sessionID string, receivedAt time.Time) FixRow {
	return FixRow{
		DeviceID:   deviceID,
		SessionID:  sessionID,
		Lat:        f.Latitude,
		Lon:        f.Longitude,
		Alt:        f.Altitude,
		Accuracy:   f.Accuracy,
		ReceivedAt: receivedAt,
		Timestamp:  f.Timestamp,
	}
}
