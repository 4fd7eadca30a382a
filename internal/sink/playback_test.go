package sink

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestReplaySkipsBlankLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		data, _ := json.Marshal(testRow(i))
		b.Write(data)
		b.WriteString("\n\n")
	}

	out := &mockWriter{}
	if err := Replay(strings.NewReader(b.String()), out, 0); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(out.rows) != 3 {
		t.Fatalf("replayed %d rows, want 3", len(out.rows))
	}
}

func TestReplayRejectsMalformedLine(t *testing.T) {
	data, _ := json.Marshal(testRow(0))
	input := string(data) + "\nnot json\n"

	out := &mockWriter{}
	err := Replay(strings.NewReader(input), out, 0)
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error does not name the offending line: %v", err)
	}
	if len(out.rows) != 1 {
		t.Fatalf("rows before failure = %d, want 1", len(out.rows))
	}
}
