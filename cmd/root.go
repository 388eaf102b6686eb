package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"ibexalign/internal/cache"
	"ibexalign/internal/config"
	"ibexalign/internal/dataset"
	"ibexalign/internal/worker"
)

var (
	verbose     bool
	quiet       bool
	datasetFile string
	dataDir     string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ibexalign",
	Short: "Post-process recorded experiment trials into word timings",
	Long: `ibexalign turns the recordings of an online reading experiment into
per-word onset and offset times. It extracts transcriptions from the
dataset, converts the recordings to mp3, fills in missing transcriptions
with speech-to-text, force aligns every trial and writes the word timings
back into the dataset as Word{n}Onset/Word{n}Offset columns.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg = config.Load()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if datasetFile != "" {
			cfg.Dataset = datasetFile
		}
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler).With("run", ulid.Make().String()))
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&datasetFile, "file", "f", "", "dataset CSV, relative to the data directory (default results_tidy_transcribed.csv)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "directory holding the dataset and the per-participant trees")
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadDataset() (*dataset.Table, string, error) {
	path := cfg.Path(cfg.Dataset)
	t, err := dataset.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load dataset: %w", err)
	}
	slog.Info("loaded dataset", "path", path, "rows", len(t.Rows))
	return t, path, nil
}

func openCache() (cache.Store, func(), error) {
	store, err := cache.Open(cfg.CacheURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	closeFn := func() {}
	if c, ok := store.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				slog.Warn("close cache", "err", err)
			}
		}
	}
	return store, closeFn, nil
}

func report(step string, s worker.Summary) {
	slog.Info(step+" finished", "done", s.Done, "skipped", s.Skipped, "failed", s.Failed)
}

// poolFlags are shared by the subcommands that call external services.
type poolFlags struct {
	noAsync       bool
	maxConcurrent int
	rateLimit     int
}

func (p *poolFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().BoolVar(&p.noAsync, "no-async", false, "process trials one at a time")
	cmd.Flags().IntVarP(&p.maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrent, "max concurrent requests")
	cmd.Flags().IntVar(&p.rateLimit, "rate-limit", defaults.RateLimitPerMin, "requests per minute")
}

func (p *poolFlags) pool() worker.Pool {
	return worker.Pool{
		NoAsync:         p.noAsync,
		MaxConcurrent:   p.maxConcurrent,
		RateLimitPerMin: p.rateLimit,
	}
}
