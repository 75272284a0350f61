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
	patternName     string
	patternDuration time.Duration
	patternTags     []string
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Play a named funscript pattern (resolved via --settings' pattern_path)",
	RunE:  runPattern,
}

func init() {
	patternCmd.Flags().StringVar(&patternName, "name", "", "pattern name, without extension (required)")
	patternCmd.Flags().DurationVar(&patternDuration, "duration", 2*time.Second, "run length")
	patternCmd.Flags().StringSliceVar(&patternTags, "tags", nil, "event tags to target (default: every enabled device)")
	patternCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(patternCmd)
}

func runPattern(cmd *cobra.Command, args []string) error {
	return withFacade(func(f *api.Facade, log *zap.Logger) error {
		handle := f.VibratePattern(patternName, model.FromGo(patternDuration), patternTags)
		if !handle.Valid() {
			return fmt.Errorf("pattern submission rejected")
		}
		fmt.Printf("handle: %d\n", handle)
		time.Sleep(patternDuration)
		for _, ev := range f.ProcessNextEvents() {
			printEvent(ev)
		}
		return nil
	})
}
