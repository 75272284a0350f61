package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
	"hapticrt/services/heartbeat"
)

var (
	settingsPath string
	verbose      bool
	noHeartbeat  bool
)

var rootCmd = &cobra.Command{
	Use:   "tkctl",
	Short: "tkctl drives the haptic control-plane API from a terminal",
	Long: `tkctl is a demo host for the haptic device-control runtime. Each
subcommand opens its own connection (settings file via --settings, or a
built-in in-process fixture with two demo devices), performs one
operation end to end, and disconnects.

Examples:
  tkctl connect
  tkctl scan
  tkctl vibrate --speed 80 --duration 2s
  tkctl pattern --name buzz --duration 3s --tags toy
  tkctl events --watch 2s`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tkctl:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "",
		"path to a JSON settings file (spec schema); defaults to a built-in in-process fixture")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noHeartbeat, "no-heartbeat", false,
		"don't attach the heartbeat diagnostics service")
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// defaultSettings is the fixture tkctl connects against when --settings
// is not given: an in-process transport seeded with two demo devices,
// both enabled.
func defaultSettings() api.Settings {
	return api.Settings{
		Connection: api.ConnectionConfig{
			Type: "inprocess",
			Fixtures: []api.FixtureDevice{
				{Name: "demo-vibrator", Scalar: []string{"Vibrate"}},
				{Name: "demo-stroker", Scalar: []string{"Vibrate"}, Linear: 1},
			},
		},
		PatternPath: "patterns",
		Devices: []api.DeviceConfig{
			{Name: "demo-vibrator", Enabled: true, Events: []string{"toy"}},
			{Name: "demo-stroker", Enabled: true, Events: []string{"toy"}},
		},
	}
}

func loadSettings() (any, error) {
	if settingsPath == "" {
		return defaultSettings(), nil
	}
	raw, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	return raw, nil
}

// withFacade connects, optionally starts the heartbeat diagnostics
// service on the facade's internal bus, runs fn, then disconnects.
func withFacade(fn func(f *api.Facade, log *zap.Logger) error) error {
	log := newLogger()
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	f, err := api.Connect(settings, log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer f.Disconnect()

	if !noHeartbeat {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hb := heartbeat.New(log)
		if err := hb.Start(ctx, f.NewDiagConnection("tkctl-heartbeat")); err != nil {
			return fmt.Errorf("starting heartbeat: %w", err)
		}
	}

	return fn(f, log)
}
