package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
)

// MediaInfo holds duration, codec and channel count from ffprobe.
type MediaInfo struct {
	Duration float64
	Codec    string
	Channels int
}

// Available returns true if ffmpeg and ffprobe are on the PATH.
func Available() bool {
	return availableIn(exec.LookPath)
}

func availableIn(lookPath func(string) (string, error)) bool {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := lookPath(bin); err != nil {
			return false
		}
	}
	return true
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
		Channels  int    `json:"channels"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get the duration and first audio stream of a file.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,channels:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err)
	}

	info := &MediaInfo{Duration: dur, Codec: "N/A", Channels: 1}
	if len(probe.Streams) > 0 {
		if probe.Streams[0].CodecName != "" {
			info.Codec = probe.Streams[0].CodecName
		}
		if probe.Streams[0].Channels > 0 {
			info.Channels = probe.Streams[0].Channels
		}
	}
	return info, nil
}

// TrimToMP3 re-encodes input as MP3, dropping the first strip seconds.
func TrimToMP3(ctx context.Context, inputPath, outputPath string, strip float64) error {
	slog.Debug("trimming recording",
		"input", filepath.Base(inputPath),
		"output", filepath.Base(outputPath),
		"strip_sec", strip)

	args := []string{"-v", "error"}
	if strip > 0 {
		args = append(args, "-ss", strconv.FormatFloat(strip, 'f', 3, 64))
	}
	args = append(args,
		"-i", inputPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"-y",
		outputPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w\n%s", err, string(out))
	}
	return nil
}

// ToFLAC transcodes a file to FLAC and returns the encoded bytes.
func ToFLAC(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-v", "error",
		"-i", path,
		"-vn",
		"-f", "flac",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg flac failed: %w\n%s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
