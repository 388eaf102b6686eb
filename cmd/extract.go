package cmd

import (
	"github.com/spf13/cobra"

	"ibexalign/internal/worker"
)

var extractFlags struct {
	column    string
	overwrite bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write each trial's transcription to transcriptions/<participant>/NN.txt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		t, _, err := loadDataset()
		if err != nil {
			return err
		}
		column := cfg.TranscriptionCol
		if extractFlags.column != "" {
			column = extractFlags.column
		}

		s, err := worker.Extract(ctx, worker.ExtractOptions{
			Table:     t,
			Column:    column,
			Dir:       cfg.Path(cfg.Transcriptions),
			Overwrite: extractFlags.overwrite,
		})
		report("extract", s)
		return err
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFlags.column, "tcol", "t", "", "transcription column (default Transcription)")
	extractCmd.Flags().BoolVar(&extractFlags.overwrite, "overwrite", false, "overwrite existing transcription files")
	rootCmd.AddCommand(extractCmd)
}
