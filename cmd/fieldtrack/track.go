package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fieldtrack/internal/admin"
	"fieldtrack/internal/config"
	"fieldtrack/internal/logging"
	"fieldtrack/internal/platform"
	"fieldtrack/internal/sink"
	"fieldtrack/internal/store"
	"fieldtrack/internal/tracker"
	"fieldtrack/internal/worker"
)

var (
	trackConfigPath string
	trackSchemaPath string
	trackPrintOnly  bool
	trackTUI        bool
	trackLogFile    string
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the tracking daemon",
	Long:  "track starts the worker controller, launches the sampling worker, and feeds the live fix stream into the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(trackConfigPath, trackSchemaPath)
		if err != nil {
			return err
		}

		log := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		st, closeStore, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		service, err := newLocationService(cfg, log)
		if err != nil {
			return err
		}

		ctrl := tracker.New(tracker.Config{
			DeviceID:  cfg.DeviceID,
			Authority: platform.StaticAuthority{Allow: cfg.Permission == "granted"},
			Service:   service,
			Notifier:  platform.LogNotifier{Log: log},
			WakeLock:  platform.LogWakeLock{Log: log},
			Store:     st,
			Launcher: &worker.Spawner{
				Service:          service,
				Store:            st,
				Log:              log.With("side", "worker"),
				WatchdogInterval: cfg.Tracking.WatchdogInterval.Or(worker.DefaultWatchdogInterval),
				StaleAfter:       cfg.Tracking.StaleAfter.Or(worker.DefaultStaleAfter),
			},
			GracePeriod:    cfg.Tracking.GracePeriod.Or(tracker.DefaultGracePeriod),
			VerifyInterval: cfg.Tracking.VerifyInterval.Or(tracker.DefaultVerifyInterval),
			VerifyBackoff:  cfg.Tracking.VerifyBackoff.Or(tracker.DefaultVerifyBackoff),
			VerifyRetries:  cfg.Tracking.VerifyRetries,
			Log:            log,
		})

		writer, cleanup, err := newWriters(cfg, ctrl, trackPrintOnly, trackTUI, trackLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := admin.NewServer(ctrl)
		go func() {
			log.Info("admin surface listening", "addr", cfg.AdminAddr)
			if err := srv.Start(ctx, cfg.AdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
			}
		}()

		if !ctrl.Start(ctx) {
			return fmt.Errorf("tracking did not start: permission, service, or launch refused")
		}

		sub := ctrl.Subscribe(64)
		go sink.Pump(ctx, ctrl, sub, writer)
		go ctrl.Heartbeats(ctx, cfg.Tracking.HeartbeatInterval.Or(0))

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		ctrl.Stop()
		cancel()
		log.Info("tracking daemon stopped")
		return nil
	},
}

func init() {
	trackCmd.Flags().StringVar(&trackConfigPath, "config", "config/tracker.yaml", "Path to tracker configuration YAML")
	trackCmd.Flags().StringVar(&trackSchemaPath, "schema", "schemas/tracker.cue", "Path to CUE schema file")
	trackCmd.Flags().BoolVar(&trackPrintOnly, "print-only", false, "Print fixes to STDOUT instead of the configured sinks")
	trackCmd.Flags().BoolVar(&trackTUI, "tui", false, "Render the live fix stream in a terminal UI")
	trackCmd.Flags().StringVar(&trackLogFile, "log-file", "", "Path to export recorded fixes (JSONL)")
}

// newStore selects the last-fix store backend.
func newStore(ctx context.Context, cfg *config.TrackerConfig) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword,
			cfg.Store.RedisKey, cfg.Store.RedisDB, cfg.Store.RedisTTL.Or(0))
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	default:
		fs, err := store.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

// newLocationService selects the platform position source.
func newLocationService(cfg *config.TrackerConfig, log *slog.Logger) (platform.LocationService, error) {
	switch cfg.Source.Type {
	case "nmea":
		return platform.NewNMEAService(cfg.Source.Port, cfg.Source.Baud, log), nil
	case "simulate", "":
		return platform.NewSimulatedService(cfg.Source.OriginLat, cfg.Source.OriginLon,
			cfg.Source.SpeedMPS, cfg.Source.Interval.Or(0)), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}
