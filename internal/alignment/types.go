package alignment

import "strings"

// EmptySentinel is the transcription a transcriber writes when the
// participant produced no speech for a trial.
const EmptySentinel = "empty"

// Outcome is the aligner's verdict for one transcript token.
type Outcome int

const (
	Unaligned Outcome = iota
	Aligned
)

// String returns the aligner's case marker for the outcome.
func (o Outcome) String() string {
	if o == Aligned {
		return caseSuccess
	}
	return caseNotFound
}

// WordJudgment is one token's alignment outcome. Start and End are only
// meaningful when Outcome is Aligned and are zero otherwise.
type WordJudgment struct {
	Word    string // token as it appears in the submitted transcript
	Text    string // aligned surface form, empty when unaligned
	Outcome Outcome
	Start   float64
	End     float64
}

// Result is one trial's full aligner output.
type Result struct {
	Transcript string
	Words      []WordJudgment
}

// Empty returns the result synthesized for a trial with no speech.
func Empty() Result {
	return Result{Transcript: "", Words: []WordJudgment{}}
}

// IsEmptySentinel reports whether a transcription marks a silent trial.
func IsEmptySentinel(transcription string) bool {
	return strings.EqualFold(strings.TrimSpace(transcription), EmptySentinel)
}

// WordCount returns the number of whitespace-separated tokens in the
// transcript, independent of how many of them were aligned.
func (r Result) WordCount() int {
	return len(strings.Fields(r.Transcript))
}

// AlignedCount returns the number of successfully aligned words.
func (r Result) AlignedCount() int {
	n := 0
	for _, w := range r.Words {
		if w.Outcome == Aligned {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the participant said nothing in this trial.
func (r Result) IsEmpty() bool {
	return r.Transcript == ""
}
