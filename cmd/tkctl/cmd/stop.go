package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
	"hapticrt/model"
)

var stopHandle int64

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a single handle (within a fresh connection, so this is mostly for demoing the no-op case)",
	RunE:  runStop,
}

var stopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Cancel every active player and clear every actuator's stack",
	RunE:  runStopAll,
}

func init() {
	stopCmd.Flags().Int64Var(&stopHandle, "handle", -1, "handle to stop")
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(stopAllCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		ok := f.Stop(model.Handle(stopHandle))
		fmt.Printf("stop(%d): %v\n", stopHandle, ok)
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		return nil
	})
}

func runStopAll(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		ok := f.StopAll()
		fmt.Printf("stop-all: %v\n", ok)
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		return nil
	})
}
