package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hapticrt/api"
	"hapticrt/model"
)

var (
	vibrateSpeed    int
	vibrateDuration time.Duration
	vibrateTags     []string
	vibrateAll      bool
)

var vibrateCmd = &cobra.Command{
	Use:   "vibrate",
	Short: "Vibrate matching devices (or every device with --all) for a duration",
	RunE:  runVibrate,
}

func init() {
	vibrateCmd.Flags().IntVar(&vibrateSpeed, "speed", 50, "strength, 0..100")
	vibrateCmd.Flags().DurationVar(&vibrateDuration, "duration", time.Second, "run length (0 means run until stopped)")
	vibrateCmd.Flags().StringSliceVar(&vibrateTags, "tags", nil, "event tags to target (default: every enabled device)")
	vibrateCmd.Flags().BoolVar(&vibrateAll, "all", false, "target every connected, enabled device (spec's vibrate_all)")
	rootCmd.AddCommand(vibrateCmd)
}

func runVibrate(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		speed := model.NewSpeed(vibrateSpeed)
		dur := model.FromGo(vibrateDuration)
		if vibrateDuration <= 0 {
			dur = model.Infinite()
		}

		var handle model.Handle
		if vibrateAll {
			handle = f.VibrateAll(speed, dur)
		} else {
			handle = f.Vibrate(speed, dur, vibrateTags)
		}
		if !handle.Valid() {
			return fmt.Errorf("vibrate submission rejected")
		}
		fmt.Printf("handle: %d\n", handle)

		if !dur.IsInfinite() {
			time.Sleep(vibrateDuration)
		}
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		return nil
	})
}
