package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ibexalign/internal/alignment"
	"ibexalign/internal/dataset"
	"ibexalign/internal/timing"
	"ibexalign/internal/trial"
)

// TimingOptions configures Timing.
type TimingOptions struct {
	Table       *dataset.Table
	DatasetPath string // saved after merging; empty skips saving
	Column      string
	ResultsDir  string
}

// Timing reads every participant's stored alignment results and rewrites
// the Word{n}Onset/Word{n}Offset block of the dataset. A trial whose result
// cannot be parsed gets NA in every timing cell.
func Timing(ctx context.Context, opts TimingOptions) (Summary, error) {
	var t tally
	batch := make(map[string]map[int]alignment.Result)
	var all []alignment.Result

	for _, p := range opts.Table.Participants() {
		if err := ctx.Err(); err != nil {
			return t.summary(), err
		}
		results := loadResults(opts, p, &t)
		if len(results) == 0 {
			continue
		}
		batch[p] = results
		for _, r := range results {
			all = append(all, r)
		}
	}

	var transcriptions []string
	if opts.Table.HasColumn(opts.Column) {
		for r := range opts.Table.Rows {
			if v := opts.Table.Get(r, opts.Column); !dataset.IsMissing(v) {
				transcriptions = append(transcriptions, v)
			}
		}
	}
	width := timing.RequiredWidth(transcriptions, all)

	before := timing.SchemaOf(opts.Table.Header)
	after := before
	for _, p := range opts.Table.Participants() {
		results, ok := batch[p]
		if !ok {
			continue
		}
		s, err := timing.Merge(opts.Table, p, timing.Project(results, width), width)
		warnIntegrity(err)
		after = s
	}
	if added := before.Added(after); len(added) > 0 {
		slog.Info("widened timing columns", "from", before.Width, "to", after.Width)
	}

	if opts.DatasetPath != "" {
		if err := opts.Table.Save(opts.DatasetPath); err != nil {
			return t.summary(), fmt.Errorf("save dataset: %w", err)
		}
		slog.Info("wrote dataset", "path", opts.DatasetPath)
	}
	return t.summary(), nil
}

// loadResults parses one participant's result files, keyed by trial index.
// Unreadable results are replaced by the empty result so their rows are
// blanked.
func loadResults(opts TimingOptions, p string, t *tally) map[int]alignment.Result {
	dir := filepath.Join(opts.ResultsDir, p)
	files, err := trial.Result.Scan(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("no alignment results for participant", "participant", p, "path", dir)
			return nil
		}
		warnIntegrity(err)
		if files == nil {
			return nil
		}
	}

	rows := len(opts.Table.TrialRows(p))
	if len(files) != rows {
		warnIntegrity(&trial.DataIntegrityError{
			Where:  "participant " + p,
			Reason: fmt.Sprintf("%d result files for %d trials", len(files), rows),
		})
	}

	results := make(map[int]alignment.Result, len(files))
	for _, i := range trial.Indices(files) {
		key := trial.Key{Participant: p, Index: i}
		r, err := alignment.ReadFile(files[i])
		if err != nil {
			warnTrial(key, "cannot read alignment result", err)
			t.failed()
			results[i] = alignment.Empty()
			continue
		}
		results[i] = r
		t.done()
	}
	return results
}
