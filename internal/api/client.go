// Package api talks to the gentle forced aligner over its REST interface.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/bytes"
)

const (
	transcriptionsPath = "/transcriptions"
	defaultTimeout     = 10 * time.Minute
	maxErrorBody       = 200
)

// Config configures the aligner client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client submits audio/transcript pairs to gentle.
type Client struct {
	cfg         Config
	http        *http.Client
	backoffBase time.Duration
}

// NewClient creates a client for the aligner at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout},
		backoffBase: time.Second,
	}
}

// retryableError marks failures worth another attempt (network, 5xx).
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Align uploads the audio and transcript files synchronously and returns
// the raw aligner response.
func (c *Client) Align(ctx context.Context, audioPath, transcriptPath string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << uint(attempt-1)
			slog.Warn("aligner request failed, retrying",
				"file", filepath.Base(audioPath),
				"attempt", attempt,
				"backoff", backoff,
				"err", lastErr)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		body, err := c.doAlign(ctx, audioPath, transcriptPath)
		if err == nil {
			return body, nil
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("align %s: %d retries exhausted: %w", filepath.Base(audioPath), c.cfg.Retries, lastErr)
}

func (c *Client) doAlign(ctx context.Context, audioPath, transcriptPath string) ([]byte, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	transcript, err := os.Open(transcriptPath)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer transcript.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Write form files in a goroutine so the pipe feeds the request body.
	errCh := make(chan error, 1)
	go func() {
		err := writeFile(mw, "audio", audioPath, audio)
		if err == nil {
			err = writeFile(mw, "transcript", transcriptPath, transcript)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		errCh <- err
	}()

	url := c.cfg.BaseURL + transcriptionsPath + "?async=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		pr.Close()
		<-errCh
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	slog.Debug("submitting to aligner", "url", url, "audio", filepath.Base(audioPath), "size", fileSize(audio))
	resp, err := c.http.Do(req)
	if err != nil {
		pr.Close()
		<-errCh
		return nil, &retryableError{err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return nil, fmt.Errorf("multipart write: %w", writeErr)
	}

	if err := goapp.ValidateHTTPResp(resp, maxErrorBody); err != nil {
		err = fmt.Errorf("aligner returned status %d: %w", resp.StatusCode, err)
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: err}
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("read response body: %w", err)}
	}
	return body, nil
}

func writeFile(mw *multipart.Writer, field, path string, r io.Reader) error {
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

func fileSize(f *os.File) string {
	st, err := f.Stat()
	if err != nil {
		return "?"
	}
	return bytes.Format(st.Size())
}
