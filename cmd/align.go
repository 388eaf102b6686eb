package cmd

import (
	"github.com/spf13/cobra"

	"ibexalign/internal/api"
	"ibexalign/internal/config"
	"ibexalign/internal/worker"
)

var alignFlags struct {
	gentleURL  string
	overwrite  bool
	noTextGrid bool
	noTiming   bool
	maxRetries int
	pool       poolFlags
}

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Force align every trial with gentle and update the word timings",
	Long: `Submit every paired mp3/transcription to the gentle forced aligner and
store one JSON result per trial under gentle_align/<participant>/NN.json.
Each trial also gets a Praat TextGrid next to its mp3. Afterwards the
Word{n}Onset/Word{n}Offset columns of the dataset are rebuilt from the
stored results.`,
	Args: cobra.NoArgs,
	RunE: runAlign,
}

func init() {
	defaults := config.Default()

	alignCmd.Flags().StringVar(&alignFlags.gentleURL, "gentle-url", "", "gentle base URL (default "+defaults.GentleURL+")")
	alignCmd.Flags().BoolVar(&alignFlags.overwrite, "overwrite", false, "resubmit trials that already have a result")
	alignCmd.Flags().BoolVar(&alignFlags.noTextGrid, "no-praat-textgrid", false, "do not write TextGrid files")
	alignCmd.Flags().BoolVar(&alignFlags.noTiming, "no-timing", false, "do not update the dataset timing columns")
	alignCmd.Flags().IntVar(&alignFlags.maxRetries, "max-retries", defaults.MaxRetries, "retries per trial on aligner errors")
	alignFlags.pool.register(alignCmd)

	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
	if alignFlags.gentleURL != "" {
		cfg.GentleURL = alignFlags.gentleURL
	}

	ctx, stop := signalContext()
	defer stop()

	store, closeCache, err := openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	client := api.NewClient(api.Config{
		BaseURL: cfg.GentleURL,
		Retries: alignFlags.maxRetries,
	})

	s, err := worker.Align(ctx, worker.AlignOptions{
		MP3Dir:            cfg.Path(cfg.MP3),
		TranscriptionsDir: cfg.Path(cfg.Transcriptions),
		ResultsDir:        cfg.Path(cfg.Results),
		Overwrite:         alignFlags.overwrite,
		TextGrid:          !alignFlags.noTextGrid,
		Aligner:           client,
		Cache:             store,
		Pool:              alignFlags.pool.pool(),
	})
	report("align", s)
	if err != nil || alignFlags.noTiming {
		return err
	}
	return runTimingStep(ctx)
}
