// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML values like "3s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Or returns the duration, or fallback when unset.
func (d Duration) Or(fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return time.Duration(d)
}

// Source selects and parameterizes the platform location source.
type Source struct {
	Type      string   `yaml:"type"` // "simulate" or "nmea"
	OriginLat float64  `yaml:"origin_lat"`
	OriginLon float64  `yaml:"origin_lon"`
	SpeedMPS  float64  `yaml:"speed_mps"`
	Interval  Duration `yaml:"interval"`
	Port      string   `yaml:"port"`
	Baud      uint     `yaml:"baud"`
}

// Tracking holds the lifecycle timing knobs.
type Tracking struct {
	GracePeriod       Duration `yaml:"grace_period"`
	VerifyInterval    Duration `yaml:"verify_interval"`
	VerifyBackoff     Duration `yaml:"verify_backoff"`
	VerifyRetries     int      `yaml:"verify_retries"`
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`
	WatchdogInterval  Duration `yaml:"watchdog_interval"`
	StaleAfter        Duration `yaml:"stale_after"`
}

// StoreConfig selects the last-fix store backend.
type StoreConfig struct {
	Backend       string   `yaml:"backend"` // "file" or "redis"
	Path          string   `yaml:"path"`
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	RedisDB       int      `yaml:"redis_db"`
	RedisKey      string   `yaml:"redis_key"`
	RedisTTL      Duration `yaml:"redis_ttl"`
}

// Sinks toggles the fix stream consumers.
type Sinks struct {
	Stdout   bool   `yaml:"stdout"`
	File     string `yaml:"file"`
	Greptime struct {
		Endpoint string `yaml:"endpoint"`
		Database string `yaml:"database"`
	} `yaml:"greptime"`
	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientID string `yaml:"client_id"`
		Topic    string `yaml:"topic"`
	} `yaml:"mqtt"`
}

// TrackerConfig is the root configuration.
type TrackerConfig struct {
	DeviceID   string      `yaml:"device_id"`
	Permission string      `yaml:"permission"` // "granted" or "denied"
	Source     Source      `yaml:"source"`
	Tracking   Tracking    `yaml:"tracking"`
	Store      StoreConfig `yaml:"store"`
	Sinks      Sinks       `yaml:"sinks"`
	AdminAddr  string      `yaml:"admin_addr"`
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*TrackerConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg TrackerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *TrackerConfig) applyDefaults() {
	if c.DeviceID == "" {
		if host, err := os.Hostname(); err == nil {
			c.DeviceID = host
		} else {
			c.DeviceID = "fieldtrack"
		}
	}
	if c.Permission == "" {
		c.Permission = "granted"
	}
	if c.Source.Type == "" {
		c.Source.Type = "simulate"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/last-fix.json"
	}
	if c.AdminAddr == "" {
		c.AdminAddr = ":8080"
	}
}

// applyEnv lets deployment endpoints override the file.
func (c *TrackerConfig) applyEnv() {
	if v := os.Getenv("FIELDTRACK_GREPTIME_ENDPOINT"); v != "" {
		c.Sinks.Greptime.Endpoint = v
	}
	if v := os.Getenv("FIELDTRACK_MQTT_BROKER"); v != "" {
		c.Sinks.MQTT.Broker = v
	}
	if v := os.Getenv("FIELDTRACK_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
}
