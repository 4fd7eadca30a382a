package worker

import (
	"testing"
	"time"
)

func TestStale(t *testing.T) {
	base := time.Unix(100, 0)
	threshold := 15 * time.Second
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"fresh heartbeat", base.Add(time.Second), false},
		{"at threshold", base.Add(threshold), false},
		{"past threshold", base.Add(threshold + time.Millisecond), true},
		{"long silence", base.Add(time.Hour), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Stale(c.now, base, threshold); got != c.want {
				t.Fatalf("Stale(%v) = %v, want %v", c.now.Sub(base), got, c.want)
			}
		})
	}
}
