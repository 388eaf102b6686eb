package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ibexalign/internal/config"
	"ibexalign/internal/stt"
	"ibexalign/internal/worker"
)

var transcribeFlags struct {
	column      string
	language    string
	credentials string
	saveEveryN  int
	pool        poolFlags
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Fill in missing transcriptions with Google Speech-to-Text",
	Long: `Submit every trial whose transcription is missing to Google Cloud
Speech-to-Text and write the result back into the dataset. The dataset is
saved every --save-every-n transcriptions so an interrupted run loses little.`,
	Args: cobra.NoArgs,
	RunE: runTranscribe,
}

func init() {
	defaults := config.Default()

	transcribeCmd.Flags().StringVarP(&transcribeFlags.column, "tcol", "t", "", "transcription column (default Transcription)")
	transcribeCmd.Flags().StringVarP(&transcribeFlags.language, "language", "l", "", "recognition language code (default en-US)")
	transcribeCmd.Flags().StringVar(&transcribeFlags.credentials, "credentials", "", "Google service account JSON file")
	transcribeCmd.Flags().IntVarP(&transcribeFlags.saveEveryN, "save-every-n", "n", 0, fmt.Sprintf("save the dataset every n transcriptions (default %d)", defaults.SaveEveryN))
	transcribeFlags.pool.register(transcribeCmd)

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	if transcribeFlags.credentials != "" {
		cfg.CredentialsFile = transcribeFlags.credentials
	}
	if cfg.CredentialsFile != "" {
		if err := os.Setenv(config.EnvCredentials, cfg.CredentialsFile); err != nil {
			return err
		}
	}
	if transcribeFlags.language != "" {
		cfg.LanguageCode = transcribeFlags.language
	}
	if transcribeFlags.saveEveryN > 0 {
		cfg.SaveEveryN = transcribeFlags.saveEveryN
	}
	column := cfg.TranscriptionCol
	if transcribeFlags.column != "" {
		column = transcribeFlags.column
	}

	// Setup signal handling for graceful cancellation.
	ctx, stop := signalContext()
	defer stop()

	t, path, err := loadDataset()
	if err != nil {
		return err
	}

	recognizer, err := stt.NewGoogle(ctx, cfg.LanguageCode)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	store, closeCache, err := openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	s, err := worker.Transcribe(ctx, worker.TranscribeOptions{
		Table:       t,
		DatasetPath: path,
		Column:      column,
		MP3Dir:      cfg.Path(cfg.MP3),
		Language:    cfg.LanguageCode,
		SaveEveryN:  cfg.SaveEveryN,
		Recognizer:  recognizer,
		Cache:       store,
		Pool:        transcribeFlags.pool.pool(),
	})
	report("transcribe", s)
	return err
}
