package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"ibexalign/internal/worker"
)

var timingFlags struct {
	column string
}

var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Rebuild the Word{n}Onset/Word{n}Offset columns from stored results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runTimingStep(ctx)
	},
}

func init() {
	timingCmd.Flags().StringVarP(&timingFlags.column, "tcol", "t", "", "transcription column (default Transcription)")
	rootCmd.AddCommand(timingCmd)
}

func runTimingStep(ctx context.Context) error {
	t, path, err := loadDataset()
	if err != nil {
		return err
	}
	column := cfg.TranscriptionCol
	if timingFlags.column != "" {
		column = timingFlags.column
	}

	s, err := worker.Timing(ctx, worker.TimingOptions{
		Table:       t,
		DatasetPath: path,
		Column:      column,
		ResultsDir:  cfg.Path(cfg.Results),
	})
	report("timing", s)
	return err
}
