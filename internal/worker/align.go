package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"ibexalign/internal/alignment"
	"ibexalign/internal/cache"
	"ibexalign/internal/ffmpeg"
	"ibexalign/internal/textgrid"
	"ibexalign/internal/trial"
)

// Aligner submits one audio/transcript pair to the forced aligner and
// returns its raw response.
type Aligner interface {
	Align(ctx context.Context, audioPath, transcriptPath string) ([]byte, error)
}

// DurationFunc measures an audio file in seconds.
type DurationFunc func(ctx context.Context, path string) (float64, error)

// AlignOptions configures Align.
type AlignOptions struct {
	MP3Dir            string
	TranscriptionsDir string
	ResultsDir        string
	Overwrite         bool
	TextGrid          bool
	Aligner           Aligner
	Cache             cache.Store
	Duration          DurationFunc // defaults to ffmpeg.Duration
	Pool              Pool
}

type alignJob struct {
	key        trial.Key
	audio      string
	transcript string
}

// Align force-aligns every paired audio/transcription file and stores one
// result per trial under <ResultsDir>/<participant>/NN.json. With TextGrid
// set it also writes item_number_NN.TextGrid next to the audio.
func Align(ctx context.Context, opts AlignOptions) (Summary, error) {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Duration == nil {
		opts.Duration = ffmpeg.Duration
	}

	participants, err := pairParticipants(opts.MP3Dir, opts.TranscriptionsDir)
	if err != nil {
		return Summary{}, err
	}

	var jobs []alignJob
	for _, p := range participants {
		audio, err := trial.Audio.Scan(filepath.Join(opts.MP3Dir, p))
		warnIntegrity(err)
		texts, err := trial.Transcription.Scan(filepath.Join(opts.TranscriptionsDir, p))
		warnIntegrity(err)
		paired, err := trial.Pair(audio, texts, "participant "+p)
		warnIntegrity(err)

		if err := os.MkdirAll(filepath.Join(opts.ResultsDir, p), 0755); err != nil {
			return Summary{}, fmt.Errorf("create results dir: %w", err)
		}
		for _, i := range paired {
			jobs = append(jobs, alignJob{
				key:        trial.Key{Participant: p, Index: i},
				audio:      audio[i],
				transcript: texts[i],
			})
		}
	}
	slog.Info("trials to align", "participants", len(participants), "trials", len(jobs))

	var t tally
	err = forEach(ctx, opts.Pool, jobs, func(ctx context.Context, job alignJob) error {
		if err := alignTrial(ctx, opts, job, &t); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			warnTrial(job.key, "cannot align trial", err)
			t.failed()
		}
		return nil
	})
	return t.summary(), err
}

func alignTrial(ctx context.Context, opts AlignOptions, job alignJob, t *tally) error {
	resultPath := filepath.Join(opts.ResultsDir, job.key.Participant, trial.Result.FileName(job.key.Index))

	raw, err := os.ReadFile(job.transcript)
	if err != nil {
		return err
	}

	skipped := false
	switch {
	case alignment.IsEmptySentinel(string(raw)):
		slog.Warn("recording was empty", "participant", job.key.Participant, "trial", job.key.Index)
		if err := alignment.WriteFile(resultPath, alignment.Empty()); err != nil {
			return err
		}
	case fileExists(resultPath) && !opts.Overwrite:
		slog.Info("alignment already exists, skipping", "path", resultPath)
		skipped = true
	default:
		if fileExists(resultPath) {
			slog.Info("alignment already exists, overwriting", "path", resultPath)
		}
		if err := submit(ctx, opts, job, resultPath); err != nil {
			return err
		}
	}

	if opts.TextGrid {
		if err := writeTextGrid(ctx, opts, job, resultPath); err != nil {
			return err
		}
	}

	if skipped {
		t.skipped()
	} else {
		t.done()
	}
	return nil
}

// submit aligns one trial, consulting the cache first, and stores the
// response only once it parses.
func submit(ctx context.Context, opts AlignOptions, job alignJob, resultPath string) error {
	ck, err := cache.Key("gentle", job.audio, job.transcript)
	if err != nil {
		return err
	}

	body, hit, err := opts.Cache.Get(ctx, ck)
	if err != nil {
		slog.Warn("cache lookup failed", "err", err)
	}
	if !hit {
		slog.Info("force aligning", "participant", job.key.Participant, "trial", job.key.Index)
		body, err = opts.Aligner.Align(ctx, job.audio, job.transcript)
		if err != nil {
			return err
		}
	}

	if _, err := alignment.Parse(body); err != nil {
		return err
	}
	if !hit {
		if err := opts.Cache.Put(ctx, ck, body); err != nil {
			slog.Warn("cache store failed", "err", err)
		}
	}
	return os.WriteFile(resultPath, body, 0644)
}

func writeTextGrid(ctx context.Context, opts AlignOptions, job alignJob, resultPath string) error {
	if err := requireFile(job.key, resultPath); err != nil {
		return err
	}
	res, err := alignment.ReadFile(resultPath)
	if err != nil {
		return err
	}

	dur, err := opts.Duration(ctx, job.audio)
	if err != nil {
		return fmt.Errorf("measure %s: %w", filepath.Base(job.audio), err)
	}
	ann, err := textgrid.Reconstruct(res, dur)
	if err != nil {
		return err
	}

	path := filepath.Join(filepath.Dir(job.audio), trial.TextGrid.FileName(job.key.Index))
	if err := textgrid.WriteFile(path, ann); err != nil {
		return err
	}
	slog.Info("wrote TextGrid", "path", path)
	return nil
}

// pairParticipants returns the participants that have both an audio and a
// transcription directory. A mismatch is reported, not fatal.
func pairParticipants(mp3Dir, transcriptionsDir string) ([]string, error) {
	audio, err := subdirs(mp3Dir)
	if err != nil {
		return nil, err
	}
	texts, err := subdirs(transcriptionsDir)
	if err != nil {
		return nil, err
	}

	var both, onlyAudio, onlyText []string
	for p := range audio {
		if texts[p] {
			both = append(both, p)
		} else {
			onlyAudio = append(onlyAudio, p)
		}
	}
	for p := range texts {
		if !audio[p] {
			onlyText = append(onlyText, p)
		}
	}
	sort.Strings(both)
	sort.Strings(onlyAudio)
	sort.Strings(onlyText)

	if len(onlyAudio) > 0 || len(onlyText) > 0 {
		warnIntegrity(&trial.DataIntegrityError{
			Where:  "participant directories",
			Reason: fmt.Sprintf("audio only: %v, transcriptions only: %v", onlyAudio, onlyText),
		})
	}
	return both, nil
}

func subdirs(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			out[e.Name()] = true
		}
	}
	return out, nil
}
