package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSchema = `
#Duration: string & =~"^[0-9]+(ns|us|µs|ms|s|m|h)$"

device_id?:  string
permission?: "granted" | "denied"

source?: {
	type?:       "simulate" | "nmea"
	origin_lat?: number & >=-90 & <=90
	origin_lon?: number & >=-180 & <=180
	speed_mps?:  number & >=0
	interval?:   #Duration
	port?:       string
	baud?:       int & >0
}

tracking?: {
	grace_period?:       #Duration
	verify_interval?:    #Duration
	verify_backoff?:     #Duration
	verify_retries?:     int & >=0
	heartbeat_interval?: #Duration
	watchdog_interval?:  #Duration
	stale_after?:        #Duration
}

store?: {
	backend?: "file" | "redis"
	path?:    string
}

admin_addr?: string
`

func writeFiles(t *testing.T, yamlBody string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tracker.yaml")
	schemaPath := filepath.Join(dir, "tracker.cue")
	if err := os.WriteFile(cfgPath, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return cfgPath, schemaPath
}

func TestLoadParsesFullConfig(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, `
device_id: survey-07
permission: granted
source:
  type: simulate
  origin_lat: -6.2
  origin_lon: 106.8167
  speed_mps: 1.4
  interval: 500ms
tracking:
  grace_period: 2s
  verify_interval: 3s
  verify_backoff: 1s
  verify_retries: 5
  heartbeat_interval: 5s
  watchdog_interval: 5s
  stale_after: 15s
store:
  backend: file
  path: /tmp/last-fix.json
admin_addr: ":9090"
`)

	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeviceID != "survey-07" {
		t.Fatalf("device_id = %q", cfg.DeviceID)
	}
	if got := cfg.Source.Interval.Or(time.Second); got != 500*time.Millisecond {
		t.Fatalf("interval = %v", got)
	}
	if got := cfg.Tracking.StaleAfter.Or(0); got != 15*time.Second {
		t.Fatalf("stale_after = %v", got)
	}
	if cfg.Tracking.VerifyRetries != 5 {
		t.Fatalf("verify_retries = %d", cfg.Tracking.VerifyRetries)
	}
	if cfg.AdminAddr != ":9090" {
		t.Fatalf("admin_addr = %q", cfg.AdminAddr)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, "permission: granted\n")

	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DeviceID == "" {
		t.Fatal("device_id default missing")
	}
	if cfg.Source.Type != "simulate" {
		t.Fatalf("source type default = %q", cfg.Source.Type)
	}
	if cfg.Store.Backend != "file" || cfg.Store.Path == "" {
		t.Fatalf("store defaults = %+v", cfg.Store)
	}
	if cfg.AdminAddr != ":8080" {
		t.Fatalf("admin_addr default = %q", cfg.AdminAddr)
	}
	// Unset durations fall back at the call site.
	if got := cfg.Tracking.GracePeriod.Or(2 * time.Second); got != 2*time.Second {
		t.Fatalf("grace period fallback = %v", got)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, `
tracking:
  stale_after: quickly
`)
	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected validation error for malformed duration")
	}
}

func TestLoadRejectsUnknownPermission(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, "permission: maybe\n")
	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected validation error for unknown permission value")
	}
}

func TestLoadRejectsOutOfRangeOrigin(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, `
source:
  type: simulate
  origin_lat: 123.0
`)
	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected validation error for out-of-range latitude")
	}
}

func TestEnvOverridesEndpoints(t *testing.T) {
	cfgPath, schemaPath := writeFiles(t, "permission: granted\n")
	t.Setenv("FIELDTRACK_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("FIELDTRACK_GREPTIME_ENDPOINT", "greptime.internal:4001")

	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.RedisAddr != "redis.internal:6379" {
		t.Fatalf("redis addr = %q", cfg.Store.RedisAddr)
	}
	if cfg.Sinks.Greptime.Endpoint != "greptime.internal:4001" {
		t.Fatalf("greptime endpoint = %q", cfg.Sinks.Greptime.Endpoint)
	}
}
