package geo

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFixValidate(t *testing.T) {
	ts := time.Unix(10, 0)
	cases := []struct {
		name string
		fix  Fix
		want error
	}{
		{"valid", FixAt(-6.2, 106.8167, ts), nil},
		{"lat out of range", FixAt(91, 0, ts), ErrLatitudeRange},
		{"lon out of range", FixAt(0, -181, ts), ErrLongitudeRange},
		{"no timestamp", FixAt(1, 2, time.Time{}), ErrNoTimestamp},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.fix.Validate(); err != c.want {
				t.Fatalf("Validate() = %v, want %v", err, c.want)
			}
		})
	}
}

func TestFixJSONUsesEpochMillis(t *testing.T) {
	ts := time.UnixMilli(1700000000123).UTC()
	fix := NewFix(-6.2, 106.8167, Float(42.5), Float(5.0), ts)

	data, err := json.Marshal(fix)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if got := raw["timestamp"].(float64); int64(got) != 1700000000123 {
		t.Fatalf("timestamp = %v, want epoch millis", got)
	}

	var back Fix
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal fix: %v", err)
	}
	if !back.Timestamp.Equal(ts) || back.Latitude != fix.Latitude || *back.Accuracy != 5.0 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
