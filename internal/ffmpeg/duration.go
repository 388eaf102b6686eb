package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// Duration returns the length of an audio file in seconds. WAV files are
// read directly; everything else goes through ffprobe.
func Duration(ctx context.Context, path string) (float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return wavDuration(path)
	}
	info, err := ProbeMedia(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return 0, fmt.Errorf("%s: not a valid wav file", filepath.Base(path))
	}
	if err := d.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%s: wav data chunk: %w", filepath.Base(path), err)
	}

	frameSize := int64(d.NumChans) * int64(d.BitDepth/8)
	if frameSize == 0 || d.SampleRate == 0 {
		return 0, fmt.Errorf("%s: wav header without frame size", filepath.Base(path))
	}
	frames := d.PCMLen() / frameSize
	return float64(frames) / float64(d.SampleRate), nil
}
