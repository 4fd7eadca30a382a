// Typed command/event messages crossing the controller/worker boundary
package channel

import (
	"encoding/json"
	"fmt"

	"fieldtrack/internal/geo"
)

// Kind tags a message variant. Commands travel controller→worker, events
// worker→controller; the set is closed.
type Kind string

const (
	// Commands.
	KindStop      Kind = "stop"
	KindPause     Kind = "pause"
	KindResume    Kind = "resume"
	KindHeartbeat Kind = "heartbeat"
	KindPingProbe Kind = "ping_probe"

	// Events.
	KindFixReported    Kind = "fix_reported"
	KindStatusReported Kind = "status_reported"
)

// Message is one tagged value sent over the link. Fix is set only for
// FixReported, Running only for StatusReported.
type Message struct {
	Kind    Kind
	Fix     *geo.Fix
	Running bool
}

// Command constructors.
func Stop() Message      { return Message{Kind: KindStop} }
func Pause() Message     { return Message{Kind: KindPause} }
func Resume() Message    { return Message{Kind: KindResume} }
func Heartbeat() Message { return Message{Kind: KindHeartbeat} }
func PingProbe() Message { return Message{Kind: KindPingProbe} }

// Event constructors.
func FixReported(f geo.Fix) Message { return Message{Kind: KindFixReported, Fix: &f} }
func StatusReported(running bool) Message { return Message{Kind: KindStatusReported, Running: running} }

// frame is the JSON wire shape of a message.
type frame struct {
	Type    Kind     `json:"type"`
	Fix     *geo.Fix `json:"fix,omitempty"`
	Running *bool    `json:"running,omitempty"`
}

// Encode serializes a message into a wire frame.
func Encode(m Message) ([]byte, error) {
	fr := frame{Type: m.Kind}
	switch m.Kind {
	case KindFixReported:
		if m.Fix == nil {
			return nil, fmt.Errorf("encode %s: missing fix payload", m.Kind)
		}
		fr.Fix = m.Fix
	case KindStatusReported:
		running := m.Running
		fr.Running = &running
	case KindStop, KindPause, KindResume, KindHeartbeat, KindPingProbe:
	default:
		return nil, fmt.Errorf("encode: unknown message kind %q", m.Kind)
	}
	return json.Marshal(fr)
}

// Decode parses a wire frame. An unknown tag or a payload that does not
// match the tag is an explicit error; callers log and drop such frames.
func Decode(data []byte) (Message, error) {
	var fr frame
	if err := json.Unmarshal(data, &fr); err != nil {
		return Message{}, fmt.Errorf("decode frame: %w", err)
	}
	switch fr.Type {
	case KindFixReported:
		if fr.Fix == nil {
			return Message{}, fmt.Errorf("decode %s: missing fix payload", fr.Type)
		}
		return Message{Kind: fr.Type, Fix: fr.Fix}, nil
	case KindStatusReported:
		if fr.Running == nil {
			return Message{}, fmt.Errorf("decode %s: missing running flag", fr.Type)
		}
		return Message{Kind: fr.Type, Running: *fr.Running}, nil
	case KindStop, KindPause, KindResume, KindHeartbeat, KindPingProbe:
		return Message{Kind: fr.Type}, nil
	default:
		return Message{}, fmt.Errorf("decode: unknown message kind %q", fr.Type)
	}
}
