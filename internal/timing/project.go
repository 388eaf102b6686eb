package timing

import (
	"math"
	"strings"

	"ibexalign/internal/alignment"
)

// Cell is one word slot of a trial. Both fields are NaN when the sentence
// has no word at this position, both +Inf when the aligner failed on it.
type Cell struct {
	Onset  float64
	Offset float64
}

// Absent is the cell for a slot past the end of the sentence.
func Absent() Cell { return Cell{Onset: math.NaN(), Offset: math.NaN()} }

// Failed is the cell for a word the aligner could not place.
func Failed() Cell { return Cell{Onset: math.Inf(1), Offset: math.Inf(1)} }

// Row holds one trial's cells, one per word slot.
type Row []Cell

// RequiredWidth is the number of slots needed to hold every sentence seen:
// whitespace tokens of the dataset transcriptions and of the results'
// transcripts, and the length of each result's word list. Missing and
// "empty" transcriptions count as zero words.
func RequiredWidth(transcriptions []string, results []alignment.Result) int {
	width := 0
	for _, t := range transcriptions {
		if alignment.IsEmptySentinel(t) {
			continue
		}
		width = max(width, len(strings.Fields(t)))
	}
	for _, r := range results {
		width = max(width, r.WordCount(), len(r.Words))
	}
	return width
}

// ProjectResult lays one result out over width slots.
func ProjectResult(r alignment.Result, width int) Row {
	row := make(Row, max(width, len(r.Words)))
	for i := range row {
		if i >= len(r.Words) {
			row[i] = Absent()
			continue
		}
		w := r.Words[i]
		if w.Outcome == alignment.Aligned {
			row[i] = Cell{Onset: w.Start, Offset: w.End}
		} else {
			row[i] = Failed()
		}
	}
	return row
}

// Project lays out a participant's results, keyed by trial index.
func Project(results map[int]alignment.Result, width int) map[int]Row {
	rows := make(map[int]Row, len(results))
	for i, r := range results {
		rows[i] = ProjectResult(r, width)
	}
	return rows
}
