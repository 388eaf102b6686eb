package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const gentleBody = `{"transcript": "the cat", "words": [{"case": "success", "word": "the", "alignedWord": "the", "start": 0.1, "end": 0.3}]}`

func newTestClient(ts *httptest.Server, retries int) *Client {
	c := NewClient(Config{BaseURL: ts.URL + "/", Timeout: 5 * time.Second, Retries: retries})
	c.backoffBase = time.Millisecond
	return c
}

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "item_number_01.mp3")
	transcript := filepath.Join(dir, "01.txt")
	if err := os.WriteFile(audio, []byte("fake-mp3"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(transcript, []byte("the cat\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return audio, transcript
}

func TestAlign_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/transcriptions" {
			t.Errorf("expected /transcriptions, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("async"); got != "false" {
			t.Errorf("expected async=false, got %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}

		for field, want := range map[string]string{"audio": "fake-mp3", "transcript": "the cat\n"} {
			f, hdr, err := r.FormFile(field)
			if err != nil {
				t.Errorf("missing form file %q: %v", field, err)
				continue
			}
			data, _ := io.ReadAll(f)
			f.Close()
			if string(data) != want {
				t.Errorf("%s content = %q, want %q", field, data, want)
			}
			if hdr.Filename == "" {
				t.Errorf("%s has no filename", field)
			}
		}
		io.WriteString(w, gentleBody)
	}))
	defer ts.Close()

	audio, transcript := writeInputs(t)
	got, err := newTestClient(ts, 0).Align(context.Background(), audio, transcript)
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if string(got) != gentleBody {
		t.Errorf("Align() = %s, want %s", got, gentleBody)
	}
}

func TestAlign_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, gentleBody)
	}))
	defer ts.Close()

	audio, transcript := writeInputs(t)
	if _, err := newTestClient(ts, 3).Align(context.Background(), audio, transcript); err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestAlign_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer ts.Close()

	audio, transcript := writeInputs(t)
	_, err := newTestClient(ts, 2).Align(context.Background(), audio, transcript)
	if err == nil || !strings.Contains(err.Error(), "retries exhausted") {
		t.Fatalf("Align() error = %v, want retries exhausted", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestAlign_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	audio, transcript := writeInputs(t)
	_, err := newTestClient(ts, 3).Align(context.Background(), audio, transcript)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("Align() error = %v, want status 400", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func TestAlign_MissingAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	defer ts.Close()

	_, transcript := writeInputs(t)
	_, err := newTestClient(ts, 3).Align(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), transcript)
	if err == nil {
		t.Fatal("expected error for missing audio")
	}
}
