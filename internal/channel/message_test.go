package channel

import (
	"testing"
	"time"

	"fieldtrack/internal/geo"
)

func TestEncodeDecodeFix(t *testing.T) {
	fix := geo.NewFix(-6.2, 106.8167, nil, geo.Float(5.0), time.UnixMilli(1000).UTC())
	data, err := Encode(FixReported(fix))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindFixReported || msg.Fix == nil {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Fix.Latitude != fix.Latitude || *msg.Fix.Accuracy != 5.0 || !msg.Fix.Timestamp.Equal(fix.Timestamp) {
		t.Fatalf("fix mismatch: %+v", msg.Fix)
	}
}

func TestDecodeStatus(t *testing.T) {
	data, err := Encode(StatusReported(true))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindStatusReported || !msg.Running {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"unknown kind", `{"type":"teleport"}`},
		{"fix without payload", `{"type":"fix_reported"}`},
		{"status without flag", `{"type":"status_reported"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Decode([]byte(c.data)); err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", c.data)
			}
		})
	}
}
