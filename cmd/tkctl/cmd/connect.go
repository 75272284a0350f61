package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect, scan briefly, and report discovered devices",
	RunE:  runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		fmt.Println("connected")
		if !f.ScanForDevices() {
			return fmt.Errorf("scan submission rejected")
		}
		time.Sleep(50 * time.Millisecond)
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		status, reason := f.Status()
		fmt.Printf("status: %s\n", statusString(status))
		if reason != "" {
			fmt.Printf("reason: %s\n", reason)
		}
		fmt.Println("devices:")
		for _, name := range f.GetDeviceNames() {
			fmt.Printf("  %s (connected=%v)\n", name, f.GetDeviceConnected(name))
		}
		return nil
	})
}
