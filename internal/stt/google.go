package stt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"ibexalign/internal/ffmpeg"
)

// Compile-time interface check.
var _ Recognizer = (*Google)(nil)

// Google recognizes speech with Google Cloud Speech-to-Text. Credentials
// come from the environment (GOOGLE_APPLICATION_CREDENTIALS).
type Google struct {
	client   *speech.Client
	language string
}

// NewGoogle opens a Speech-to-Text client.
func NewGoogle(ctx context.Context, language string) (*Google, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Google{client: client, language: language}, nil
}

// Recognize transcodes the file to FLAC and submits it synchronously.
func (g *Google) Recognize(ctx context.Context, audioPath string) (string, error) {
	info, err := ffmpeg.ProbeMedia(ctx, audioPath)
	if err != nil {
		return "", err
	}
	slog.Debug("audio file info",
		"file", filepath.Base(audioPath),
		"channels", info.Channels,
		"duration", info.Duration)

	content, err := ffmpeg.ToFLAC(ctx, audioPath)
	if err != nil {
		return "", err
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_FLAC,
			LanguageCode:      g.language,
			AudioChannelCount: int32(info.Channels),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	}

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", filepath.Base(audioPath), err)
	}
	slog.Debug("speech-to-text response", "file", filepath.Base(audioPath), "response", resp.String())

	transcript, ok := FirstTranscript(resp)
	if !ok {
		return "", ErrNoSpeech
	}
	return AsQuestion(transcript), nil
}

// FirstTranscript returns the top alternative of the first result.
func FirstTranscript(resp *speechpb.RecognizeResponse) (string, bool) {
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		return alts[0].GetTranscript(), true
	}
	return "", false
}

// Close releases the client connection.
func (g *Google) Close() error {
	return g.client.Close()
}
