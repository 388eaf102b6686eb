// Package textgrid rebuilds a gap-free word tier from an aligner result and
// renders it as a Praat TextGrid.
package textgrid

import (
	"fmt"
	"math"

	"ibexalign/internal/alignment"
)

// LeadingSpeechLabel marks the span before the first aligned word, where
// the participant may already be speaking but nothing was aligned.
const LeadingSpeechLabel = "{SL}"

// Interval is one labeled span of the word tier. Index is 1-based.
type Interval struct {
	Index int
	Start float64
	End   float64
	Label string
}

// Annotation is a word tier covering [0, Duration) without gaps.
type Annotation struct {
	Duration  float64
	Intervals []Interval
}

func (a *Annotation) add(start, end float64, label string) {
	a.Intervals = append(a.Intervals, Interval{
		Index: len(a.Intervals) + 1,
		Start: start,
		End:   end,
		Label: label,
	})
}

// Reconstruct turns the aligned words of r into consecutive intervals over
// the audio duration. Unaligned words are skipped. The span before the
// first aligned word gets LeadingSpeechLabel, every other gap (including
// the tail up to duration) gets an empty label.
//
// A trial without aligned words, whether the transcript is empty or the
// alignment failed entirely, yields a single empty interval. Words ending
// past duration extend the annotation to the last word end.
func Reconstruct(r alignment.Result, duration float64) (Annotation, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return Annotation{}, fmt.Errorf("invalid duration %v", duration)
	}

	a := Annotation{Duration: duration}
	var (
		prevEnd float64
		seen    bool
	)

	for i, w := range r.Words {
		if w.Outcome != alignment.Aligned {
			continue
		}
		if w.Start < 0 {
			return Annotation{}, &alignment.InvariantError{Word: i, Reason: fmt.Sprintf("negative start %v", w.Start)}
		}
		if w.Start > w.End {
			return Annotation{}, &alignment.InvariantError{Word: i, Reason: fmt.Sprintf("start %v after end %v", w.Start, w.End)}
		}

		switch {
		case !seen:
			if w.Start > 0 {
				a.add(0, w.Start, LeadingSpeechLabel)
			}
			seen = true
		case w.Start < prevEnd:
			return Annotation{}, &alignment.InvariantError{Word: i, Reason: fmt.Sprintf("start %v overlaps previous end %v", w.Start, prevEnd)}
		case w.Start > prevEnd:
			a.add(prevEnd, w.Start, "")
		}

		a.add(w.Start, w.End, w.Text)
		prevEnd = w.End
	}

	if !seen {
		a.add(0, a.Duration, "")
		return a, nil
	}

	if prevEnd > a.Duration {
		a.Duration = prevEnd
	}
	if prevEnd < a.Duration {
		a.add(prevEnd, a.Duration, "")
	}
	return a, nil
}
