package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
	"hapticrt/model"
)

var eventsWatch time.Duration

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Scan, vibrate briefly, and drain events one at a time via GetNextEvent",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().DurationVar(&eventsWatch, "watch", 500*time.Millisecond, "how long to drain events for")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		f.ScanForDevices()
		f.VibrateAll(model.NewSpeed(30), model.Timed(200))

		deadline := time.Now().Add(eventsWatch)
		for time.Now().Before(deadline) {
			ev, ok := f.GetNextEvent()
			if !ok {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			printEvent(ev)
		}
		status, reason := f.Status()
		fmt.Printf("final status: %s %s\n", statusString(status), reason)
		return nil
	})
}
