package trial

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestKind_FileName(t *testing.T) {
	tests := []struct {
		kind Kind
		i    int
		want string
	}{
		{Transcription, 1, "01.txt"},
		{Audio, 7, "item_number_07.mp3"},
		{Result, 12, "12.json"},
		{TextGrid, 3, "item_number_03.TextGrid"},
		{Result, 101, "101.json"},
	}
	for _, tt := range tests {
		if got := tt.kind.FileName(tt.i); got != tt.want {
			t.Errorf("%s.FileName(%d) = %q, want %q", tt.kind.Name, tt.i, got, tt.want)
		}
	}
}

func TestKind_Index(t *testing.T) {
	tests := []struct {
		kind   Kind
		name   string
		want   int
		wantOK bool
	}{
		{Transcription, "01.txt", 1, true},
		{Transcription, "10.txt", 10, true},
		{Transcription, "00.txt", 0, false},
		{Transcription, "notes.txt", 0, false},
		{Audio, "item_number_05.mp3", 5, true},
		{Audio, "item_number_05.mp3.bak", 0, false},
		{Audio, ".DS_Store", 0, false},
		{Result, "03.json", 3, true},
	}
	for _, tt := range tests {
		got, ok := tt.kind.Index(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s.Index(%q) = %d, %v; want %d, %v", tt.kind.Name, tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKind_Scan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01.json", "02.json", "10.json", ".DS_Store", "readme.md")

	got, err := Result.Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	want := map[int]string{
		1:  filepath.Join(dir, "01.json"),
		2:  filepath.Join(dir, "02.json"),
		10: filepath.Join(dir, "10.json"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 10}, Indices(got)); diff != "" {
		t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
	}
}

func TestKind_ScanDuplicate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.txt", "01.txt", "02.txt")

	got, err := Transcription.Scan(dir)
	var de *DataIntegrityError
	if !errors.As(err, &de) {
		t.Fatalf("Scan() error = %v, want DataIntegrityError", err)
	}
	if len(got) != 2 {
		t.Errorf("Scan() returned %d files, want 2", len(got))
	}
}

func TestPair(t *testing.T) {
	left := map[int]string{1: "a1", 2: "a2", 4: "a4"}
	right := map[int]string{1: "b1", 2: "b2", 3: "b3"}

	got, err := Pair(left, right, "p1")
	var de *DataIntegrityError
	if !errors.As(err, &de) {
		t.Fatalf("Pair() error = %v, want DataIntegrityError", err)
	}
	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Errorf("Pair() mismatch (-want +got):\n%s", diff)
	}

	got, err = Pair(left, left, "p1")
	if err != nil {
		t.Fatalf("Pair() error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 4}, got); diff != "" {
		t.Errorf("Pair() mismatch (-want +got):\n%s", diff)
	}
}
