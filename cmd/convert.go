package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"ibexalign/internal/config"
	"ibexalign/internal/ffmpeg"
	"ibexalign/internal/worker"
)

var convertFlags struct {
	overwrite bool
	padding   float64
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Extract recordings from zip archives and trim them to mp3",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ffmpeg.Available() {
			return errors.New("ffmpeg and ffprobe must be on PATH")
		}

		ctx, stop := signalContext()
		defer stop()

		t, _, err := loadDataset()
		if err != nil {
			return err
		}

		s, err := worker.Convert(ctx, worker.ConvertOptions{
			Table:     t,
			ZipDir:    cfg.Path(cfg.Zip),
			MP3Dir:    cfg.Path(cfg.MP3),
			Padding:   convertFlags.padding,
			Overwrite: convertFlags.overwrite,
		})
		report("convert", s)
		return err
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertFlags.overwrite, "overwrite", true, "overwrite existing mp3 files")
	convertCmd.Flags().Float64Var(&convertFlags.padding, "padding", config.Default().StripPadding, "seconds stripped on top of SecondsToStripFromFrontOfRecording")
	rootCmd.AddCommand(convertCmd)
}
