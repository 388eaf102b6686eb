package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"ibexalign/internal/cache"
	"ibexalign/internal/dataset"
	"ibexalign/internal/stt"
	"ibexalign/internal/trial"
)

// TranscribeOptions configures Transcribe.
type TranscribeOptions struct {
	Table       *dataset.Table
	DatasetPath string
	Column      string
	MP3Dir      string
	Language    string
	SaveEveryN  int
	Recognizer  stt.Recognizer
	Cache       cache.Store
	Pool        Pool
}

type transcribeJob struct {
	key trial.Key
	row int
}

// Transcribe fills in missing transcriptions with a first pass from the
// speech-to-text service. The dataset is saved every SaveEveryN
// submissions so a failed run does not pay for the same audio twice.
func Transcribe(ctx context.Context, opts TranscribeOptions) (Summary, error) {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	opts.Table.EnsureColumn(opts.Column)

	var jobs []transcribeJob
	for _, p := range opts.Table.Participants() {
		for i, row := range opts.Table.TrialRows(p) {
			if dataset.IsMissing(opts.Table.Get(row, opts.Column)) {
				jobs = append(jobs, transcribeJob{key: trial.Key{Participant: p, Index: i + 1}, row: row})
			}
		}
	}
	slog.Info("rows without transcription", "count", len(jobs))

	cp := dataset.NewCheckpointer(opts.Table, opts.DatasetPath, opts.SaveEveryN)
	var t tally

	err := forEach(ctx, opts.Pool, jobs, func(ctx context.Context, job transcribeJob) error {
		text, err := transcribeTrial(ctx, opts, job.key)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, stt.ErrNoSpeech) {
				slog.Warn("no speech recognized", "participant", job.key.Participant, "trial", job.key.Index)
				t.skipped()
				return nil
			}
			warnTrial(job.key, "cannot transcribe recording", err)
			t.failed()
			return nil
		}

		t.done()
		return cp.Update(func(tbl *dataset.Table) {
			tbl.Set(job.row, opts.Column, text)
		})
	})

	if ferr := cp.Flush(); ferr != nil {
		return t.summary(), fmt.Errorf("save dataset: %w", ferr)
	}
	slog.Info("saved dataset", "path", opts.DatasetPath)
	return t.summary(), err
}

func transcribeTrial(ctx context.Context, opts TranscribeOptions, key trial.Key) (string, error) {
	audio := filepath.Join(opts.MP3Dir, key.Participant, trial.Audio.FileName(key.Index))
	if err := requireFile(key, audio); err != nil {
		return "", err
	}

	ck, err := cache.Key("stt:"+opts.Language, audio)
	if err != nil {
		return "", err
	}
	if v, ok, err := opts.Cache.Get(ctx, ck); err != nil {
		slog.Warn("cache lookup failed", "err", err)
	} else if ok {
		slog.Debug("using cached transcription", "participant", key.Participant, "trial", key.Index)
		return string(v), nil
	}

	slog.Info("submitting recording to speech-to-text",
		"participant", key.Participant,
		"trial", key.Index)
	text, err := opts.Recognizer.Recognize(ctx, audio)
	if err != nil {
		return "", err
	}
	if err := opts.Cache.Put(ctx, ck, []byte(text)); err != nil {
		slog.Warn("cache store failed", "err", err)
	}
	return text, nil
}
