package worker

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ibexalign/internal/dataset"
	"ibexalign/internal/ffmpeg"
	"ibexalign/internal/trial"
)

// TrimFunc re-encodes a recording, dropping its first strip seconds.
type TrimFunc func(ctx context.Context, in, out string, strip float64) error

// ConvertOptions configures Convert.
type ConvertOptions struct {
	Table     *dataset.Table
	ZipDir    string
	MP3Dir    string
	Padding   float64 // seconds added to each row's strip value
	Overwrite bool
	Trim      TrimFunc // defaults to ffmpeg.TrimToMP3
}

// Convert extracts each participant's recordings from their zip archive and
// writes them as <MP3Dir>/<participant>/item_number_NN.mp3, trimmed by the
// row's SecondsToStripFromFrontOfRecording plus Padding.
func Convert(ctx context.Context, opts ConvertOptions) (Summary, error) {
	for _, col := range []string{dataset.ColArchive, dataset.ColWebm, dataset.ColStripSeconds} {
		if !opts.Table.HasColumn(col) {
			return Summary{}, fmt.Errorf("dataset has no %q column", col)
		}
	}
	if opts.Trim == nil {
		opts.Trim = ffmpeg.TrimToMP3
	}

	var t tally
	for _, p := range opts.Table.Participants() {
		if err := ctx.Err(); err != nil {
			return t.summary(), err
		}
		slog.Info("converting recordings", "participant", p)
		if err := convertParticipant(ctx, opts, p, &t); err != nil {
			return t.summary(), err
		}
	}
	return t.summary(), nil
}

func convertParticipant(ctx context.Context, opts ConvertOptions, p string, t *tally) error {
	rows := opts.Table.TrialRows(p)

	var archive string
	for _, r := range rows {
		if v := strings.TrimSpace(opts.Table.Get(r, dataset.ColArchive)); !dataset.IsMissing(v) {
			archive = filepath.Join(opts.ZipDir, v)
			break
		}
	}
	if archive == "" {
		slog.Warn("no recordings archive listed, skipping participant", "participant", p)
		return nil
	}

	z, err := zip.OpenReader(archive)
	if err != nil {
		slog.Warn("cannot open recordings archive, skipping participant", "participant", p, "path", archive, "err", err)
		return nil
	}
	defer z.Close()

	dir := filepath.Join(opts.MP3Dir, p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := trial.Key{Participant: p, Index: i + 1}
		out := filepath.Join(dir, trial.Audio.FileName(key.Index))

		if fileExists(out) {
			if !opts.Overwrite {
				slog.Info("mp3 already exists, skipping", "path", out)
				t.skipped()
				continue
			}
			slog.Info("mp3 already exists, overwriting", "path", out)
		}

		if err := convertTrial(ctx, opts, z, key, r, out); err != nil {
			warnTrial(key, "cannot convert recording", err)
			t.failed()
			continue
		}
		slog.Info("saved mp3", "path", out)
		t.done()
	}
	return nil
}

func convertTrial(ctx context.Context, opts ConvertOptions, z *zip.ReadCloser, key trial.Key, row int, out string) error {
	name := strings.TrimSpace(opts.Table.Get(row, dataset.ColWebm))
	if dataset.IsMissing(name) {
		return fmt.Errorf("no %s for trial", dataset.ColWebm)
	}
	strip, err := dataset.ParseFloat(opts.Table.Get(row, dataset.ColStripSeconds))
	if err != nil {
		return fmt.Errorf("parse %s: %w", dataset.ColStripSeconds, err)
	}
	if math.IsNaN(strip) {
		strip = 0
	}

	src, err := z.Open(name)
	if err != nil {
		return &trial.MissingSourceFileError{Key: key, Path: name}
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ibexalign-*"+filepath.Ext(name))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("extract %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return opts.Trim(ctx, tmp.Name(), out, strip+opts.Padding)
}
