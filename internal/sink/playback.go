package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fieldtrack/internal/geo"
)

// Replay feeds a recorded fix log to writer, one JSONL line per row. A
// speed > 0 reproduces the original receipt cadence scaled by speed;
// speed <= 0 replays as fast as the writer accepts. Blank lines are
// skipped, anything else that does not parse aborts with the line number.
func Replay(r io.Reader, writer FixWriter, speed float64) error {
	sc := bufio.NewScanner(r)
	var prev time.Time
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var row geo.FixRow
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return fmt.Errorf("fix log line %d: %w", line, err)
		}
		// Pace on receipt time: that is the cadence the sinks saw live.
		if speed > 0 && !prev.IsZero() {
			gap := row.ReceivedAt.Sub(prev)
			if speed != 1 {
				gap = time.Duration(float64(gap) / speed)
			}
			if gap > 0 {
				time.Sleep(gap)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		prev = row.ReceivedAt
	}
	return sc.Err()
}

// ReplayFile opens a fix log and replays its rows.
func ReplayFile(path string, writer FixWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Replay(f, writer, speed)
}
