package textgrid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{2, "2.0"},
		{0.3, "0.3"},
		{1.25, "1.25"},
		{12.345678, "12.345678"},
		{1234567, "1234567.0"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	a := Annotation{
		Duration: 2,
		Intervals: []Interval{
			{1, 0, 0.3, LeadingSpeechLabel},
			{2, 0.3, 0.5, "the"},
			{3, 0.5, 2, ""},
		},
	}

	want := `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 2.0
tiers? <exists>
size = 1
item []:
    item [1]:
        class = "IntervalTier"
        name = "word"
        xmin = 0
        xmax = 2.0
        intervals: size = 3
            intervals [1]:
                xmin = 0
                xmax = 0.3
                text = "{SL}"
            intervals [2]:
                xmin = 0.3
                xmax = 0.5
                text = "the"
            intervals [3]:
                xmin = 0.5
                xmax = 2.0
                text = ""`

	if got := Format(a); got != want {
		t.Errorf("Format() =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormat_QuotesLabels(t *testing.T) {
	a := Annotation{Duration: 1, Intervals: []Interval{{1, 0, 1, `say "hi"`}}}
	got := Format(a)
	want := `text = "say ""hi"""`
	if !containsLine(got, want) {
		t.Errorf("Format() missing %q in:\n%s", want, got)
	}
}

func containsLine(s, line string) bool {
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item_number_01.TextGrid")
	a := Annotation{Duration: 1, Intervals: []Interval{{1, 0, 1, ""}}}
	if err := WriteFile(path, a); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != Format(a) {
		t.Errorf("file content differs from Format()")
	}
}
