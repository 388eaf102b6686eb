package textgrid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ibexalign/internal/alignment"
)

func aligned(text string, start, end float64) alignment.WordJudgment {
	return alignment.WordJudgment{Word: text, Text: text, Outcome: alignment.Aligned, Start: start, End: end}
}

func unaligned(word string) alignment.WordJudgment {
	return alignment.WordJudgment{Word: word, Outcome: alignment.Unaligned}
}

// checkCoverage asserts the tier starts at 0, ends at the duration and has
// no gaps or overlaps.
func checkCoverage(t *testing.T, a Annotation) {
	t.Helper()
	if len(a.Intervals) == 0 {
		t.Fatal("no intervals")
	}
	if a.Intervals[0].Start != 0 {
		t.Errorf("first interval starts at %v, want 0", a.Intervals[0].Start)
	}
	if last := a.Intervals[len(a.Intervals)-1]; last.End != a.Duration {
		t.Errorf("last interval ends at %v, want %v", last.End, a.Duration)
	}
	for k, iv := range a.Intervals {
		if iv.Index != k+1 {
			t.Errorf("interval %d has index %d", k+1, iv.Index)
		}
		if iv.Start > iv.End {
			t.Errorf("interval %d: start %v after end %v", iv.Index, iv.Start, iv.End)
		}
		if k > 0 {
			prev := a.Intervals[k-1]
			if prev.End != iv.Start {
				t.Errorf("gap between interval %d (end %v) and %d (start %v)", prev.Index, prev.End, iv.Index, iv.Start)
			}
			if iv.Start <= prev.Start {
				t.Errorf("interval %d does not start after interval %d", iv.Index, prev.Index)
			}
		}
	}
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name     string
		result   alignment.Result
		duration float64
		want     []Interval
	}{
		{
			name:     "empty transcript",
			result:   alignment.Empty(),
			duration: 2.5,
			want:     []Interval{{1, 0, 2.5, ""}},
		},
		{
			name: "no aligned words",
			result: alignment.Result{
				Transcript: "the cat",
				Words:      []alignment.WordJudgment{unaligned("the"), unaligned("cat")},
			},
			duration: 1.5,
			want:     []Interval{{1, 0, 1.5, ""}},
		},
		{
			name: "first word at zero",
			result: alignment.Result{
				Transcript: "the cat",
				Words:      []alignment.WordJudgment{aligned("the", 0, 0.2), aligned("cat", 0.2, 0.5)},
			},
			duration: 0.5,
			want: []Interval{
				{1, 0, 0.2, "the"},
				{2, 0.2, 0.5, "cat"},
			},
		},
		{
			name: "leading speech",
			result: alignment.Result{
				Transcript: "the cat",
				Words:      []alignment.WordJudgment{aligned("the", 0.3, 0.5), aligned("cat", 0.5, 0.9)},
			},
			duration: 0.9,
			want: []Interval{
				{1, 0, 0.3, LeadingSpeechLabel},
				{2, 0.3, 0.5, "the"},
				{3, 0.5, 0.9, "cat"},
			},
		},
		{
			name: "gap between words",
			result: alignment.Result{
				Transcript: "the cat",
				Words:      []alignment.WordJudgment{aligned("the", 0, 0.5), aligned("cat", 0.8, 1.1)},
			},
			duration: 1.1,
			want: []Interval{
				{1, 0, 0.5, "the"},
				{2, 0.5, 0.8, ""},
				{3, 0.8, 1.1, "cat"},
			},
		},
		{
			name: "unaligned words are skipped",
			result: alignment.Result{
				Transcript: "is the cat here",
				Words: []alignment.WordJudgment{
					unaligned("is"),
					aligned("the", 0.4, 0.6),
					unaligned("cat"),
					aligned("here", 0.6, 1.0),
				},
			},
			duration: 1.0,
			want: []Interval{
				{1, 0, 0.4, LeadingSpeechLabel},
				{2, 0.4, 0.6, "the"},
				{3, 0.6, 1.0, "here"},
			},
		},
		{
			name: "trailing silence",
			result: alignment.Result{
				Transcript: "the cat sat",
				Words:      []alignment.WordJudgment{aligned("the", 0, 0.2), aligned("cat", 0.2, 0.5), unaligned("sat")},
			},
			duration: 2.0,
			want: []Interval{
				{1, 0, 0.2, "the"},
				{2, 0.2, 0.5, "cat"},
				{3, 0.5, 2.0, ""},
			},
		},
		{
			name: "word past probed duration",
			result: alignment.Result{
				Transcript: "cat",
				Words:      []alignment.WordJudgment{aligned("cat", 0.1, 1.25)},
			},
			duration: 1.2,
			want: []Interval{
				{1, 0, 0.1, LeadingSpeechLabel},
				{2, 0.1, 1.25, "cat"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconstruct(tt.result, tt.duration)
			if err != nil {
				t.Fatalf("Reconstruct() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Intervals); diff != "" {
				t.Errorf("Reconstruct() mismatch (-want +got):\n%s", diff)
			}
			checkCoverage(t, got)
		})
	}
}

func TestReconstruct_EmptyHasNoLabels(t *testing.T) {
	for _, d := range []float64{0.01, 1, 3.75} {
		got, err := Reconstruct(alignment.Empty(), d)
		if err != nil {
			t.Fatalf("Reconstruct() error: %v", err)
		}
		checkCoverage(t, got)
		for _, iv := range got.Intervals {
			if iv.Label != "" {
				t.Errorf("duration %v: interval %d labeled %q", d, iv.Index, iv.Label)
			}
		}
	}
}

func TestReconstruct_Overlap(t *testing.T) {
	r := alignment.Result{
		Transcript: "the cat",
		Words:      []alignment.WordJudgment{aligned("the", 0, 0.5), aligned("cat", 0.4, 0.9)},
	}
	_, err := Reconstruct(r, 1)
	var ie *alignment.InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("Reconstruct() error = %v, want InvariantError", err)
	}
	if ie.Word != 1 {
		t.Errorf("InvariantError.Word = %d, want 1", ie.Word)
	}
}

func TestReconstruct_NegativeStart(t *testing.T) {
	r := alignment.Result{
		Transcript: "cat",
		Words:      []alignment.WordJudgment{aligned("cat", -0.1, 0.4)},
	}
	a, err := Reconstruct(r, 1)
	var ie *alignment.InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("Reconstruct() = %+v, %v; want InvariantError", a.Intervals, err)
	}
	if ie.Word != 0 {
		t.Errorf("InvariantError.Word = %d, want 0", ie.Word)
	}
}

func TestReconstruct_BadDuration(t *testing.T) {
	if _, err := Reconstruct(alignment.Empty(), -1); err == nil {
		t.Error("expected error for negative duration")
	}
}
