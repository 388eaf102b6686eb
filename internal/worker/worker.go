package worker

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"ibexalign/internal/alignment"
	"ibexalign/internal/trial"
)

// Pool configures how per-trial calls to external services are scheduled.
type Pool struct {
	NoAsync         bool
	MaxConcurrent   int
	RateLimitPerMin int
}

// Summary counts what an orchestrator did with each trial.
type Summary struct {
	Done    int
	Skipped int
	Failed  int
}

// tally is a Summary shared by concurrent workers.
type tally struct {
	mu sync.Mutex
	s  Summary
}

func (t *tally) done()    { t.add(func(s *Summary) { s.Done++ }) }
func (t *tally) skipped() { t.add(func(s *Summary) { s.Skipped++ }) }
func (t *tally) failed()  { t.add(func(s *Summary) { s.Failed++ }) }

func (t *tally) add(fn func(s *Summary)) {
	t.mu.Lock()
	fn(&t.s)
	t.mu.Unlock()
}

func (t *tally) summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

// warnTrial logs a per-trial failure. The trial is skipped and the run
// continues.
func warnTrial(key trial.Key, msg string, err error) {
	attrs := []any{"participant", key.Participant, "trial", key.Index, "err", err}

	var (
		malformed *alignment.MalformedResultError
		invariant *alignment.InvariantError
		missing   *trial.MissingSourceFileError
	)
	switch {
	case errors.As(err, &malformed):
		attrs = append(attrs, "kind", "malformed_result")
	case errors.As(err, &invariant):
		attrs = append(attrs, "kind", "invariant")
	case errors.As(err, &missing):
		attrs = append(attrs, "kind", "missing_source")
	}
	slog.Warn(msg, attrs...)
}

// warnIntegrity logs a data-integrity fault; processing continues on what
// can be paired.
func warnIntegrity(err error) {
	if err == nil {
		return
	}
	slog.Warn("data integrity fault", "kind", "data_integrity", "err", err)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// requireFile returns a MissingSourceFileError when path does not exist.
func requireFile(key trial.Key, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &trial.MissingSourceFileError{Key: key, Path: path}
		}
		return err
	}
	return nil
}
