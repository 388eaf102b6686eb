package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ibexalign/internal/dataset"
	"ibexalign/internal/trial"
)

// ExtractOptions configures Extract.
type ExtractOptions struct {
	Table     *dataset.Table
	Column    string
	Dir       string // transcriptions root; one subdirectory per participant
	Overwrite bool
}

// Extract writes each trial's transcription to <Dir>/<participant>/NN.txt
// for input to the forced aligner.
func Extract(ctx context.Context, opts ExtractOptions) (Summary, error) {
	if !opts.Table.HasColumn(opts.Column) {
		return Summary{}, fmt.Errorf("dataset has no %q column", opts.Column)
	}

	var t tally
	for _, p := range opts.Table.Participants() {
		if err := ctx.Err(); err != nil {
			return t.summary(), err
		}

		dir := filepath.Join(opts.Dir, p)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return t.summary(), fmt.Errorf("create %s: %w", dir, err)
		}

		for i, row := range opts.Table.TrialRows(p) {
			key := trial.Key{Participant: p, Index: i + 1}
			text := opts.Table.Get(row, opts.Column)
			if dataset.IsMissing(text) {
				slog.Warn("missing transcription", "participant", p, "trial", key.Index)
				t.skipped()
				continue
			}

			path := filepath.Join(dir, trial.Transcription.FileName(key.Index))
			if fileExists(path) && !opts.Overwrite {
				slog.Info("file already exists, skipping", "path", path)
				t.skipped()
				continue
			}

			if err := os.WriteFile(path, []byte(strings.TrimSpace(text)+"\n"), 0644); err != nil {
				warnTrial(key, "cannot write transcription", err)
				t.failed()
				continue
			}
			slog.Info("wrote transcription", "path", path)
			t.done()
		}
	}
	return t.summary(), nil
}
