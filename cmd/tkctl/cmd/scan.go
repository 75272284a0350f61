package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
)

var scanWatch time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Start scanning and print DeviceAdded/DeviceRemoved events for a window",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanWatch, "watch", 200*time.Millisecond, "how long to watch for scan events")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		if !f.ScanForDevices() {
			return fmt.Errorf("scan submission rejected")
		}
		deadline := time.Now().Add(scanWatch)
		for time.Now().Before(deadline) {
			for _, ev := range f.ProcessNextEvents() {
				printEvent(ev)
			}
			time.Sleep(10 * time.Millisecond)
		}
		if !f.StopScan() {
			return fmt.Errorf("stop-scan submission rejected")
		}
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		return nil
	})
}
