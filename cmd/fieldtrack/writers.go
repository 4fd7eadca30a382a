package main

import (
	"fieldtrack/internal/config"
	"fieldtrack/internal/sink"
	"fieldtrack/internal/tracker"
)

// newWriters assembles the sink pipeline from config and flags. It returns
// the combined writer and a cleanup function for writers holding resources.
func newWriters(cfg *config.TrackerConfig, ctrl *tracker.Controller, printOnly, tui bool, logFile string) (sink.FixWriter, func(), error) {
	cleanup := func() {}
	if printOnly {
		return &sink.StdoutWriter{}, cleanup, nil
	}

	var writers []sink.FixWriter
	var closers []func()

	if cfg.Sinks.Stdout {
		writers = append(writers, &sink.StdoutWriter{})
	}
	path := logFile
	if path == "" {
		path = cfg.Sinks.File
	}
	if path != "" {
		fw, err := sink.NewFileWriter(path)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		closers = append(closers, func() { fw.Close() })
	}
	if cfg.Sinks.Greptime.Endpoint != "" {
		db := cfg.Sinks.Greptime.Database
		if db == "" {
			db = "public"
		}
		gw, err := sink.NewGreptimeWriter(cfg.Sinks.Greptime.Endpoint, db)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}
	if cfg.Sinks.MQTT.Broker != "" {
		clientID := cfg.Sinks.MQTT.ClientID
		if clientID == "" {
			clientID = "fieldtrack-" + cfg.DeviceID
		}
		mp, err := sink.NewMQTTPublisher(cfg.Sinks.MQTT.Broker, clientID, cfg.Sinks.MQTT.Topic)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, mp)
		closers = append(closers, mp.Close)
	}
	if tui {
		writers = append(writers, sink.NewTUIWriter(ctrl))
	}
	if len(writers) == 0 {
		writers = append(writers, &sink.StdoutWriter{})
	}

	cleanup = func() {
		for _, c := range closers {
			c()
		}
	}
	if len(writers) == 1 {
		return writers[0], cleanup, nil
	}
	return sink.NewMultiWriter(writers...), cleanup, nil
}
