// Package timing projects per-word alignment timestamps into the wide
// Word{n}Onset / Word{n}Offset columns of the dataset.
package timing

import (
	"fmt"
	"regexp"
	"strconv"
)

var columnPattern = regexp.MustCompile(`^Word(\d+)(Onset|Offset)$`)

// OnsetColumn names the onset column for 1-based word position n.
func OnsetColumn(n int) string { return fmt.Sprintf("Word%dOnset", n) }

// OffsetColumn names the offset column for 1-based word position n.
func OffsetColumn(n int) string { return fmt.Sprintf("Word%dOffset", n) }

// IsTimingColumn reports whether a column belongs to the timing block.
func IsTimingColumn(name string) bool {
	return columnPattern.MatchString(name)
}

// Schema is the width of the timing block: the number of word slots.
// It only ever grows.
type Schema struct {
	Width int
}

// SchemaOf recovers the schema already present in a header. A header with
// Word7Onset but no Word6Offset still has width 7.
func SchemaOf(header []string) Schema {
	var s Schema
	for _, h := range header {
		m := columnPattern.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > s.Width {
			s.Width = n
		}
	}
	return s
}

// Widen returns the schema able to hold required slots. It never shrinks.
func (s Schema) Widen(required int) Schema {
	if required > s.Width {
		return Schema{Width: required}
	}
	return s
}

// Columns lists the block's columns, onset and offset interleaved per word.
func (s Schema) Columns() []string {
	cols := make([]string, 0, 2*s.Width)
	for n := 1; n <= s.Width; n++ {
		cols = append(cols, OnsetColumn(n), OffsetColumn(n))
	}
	return cols
}

// Added returns the columns next has that s lacks.
func (s Schema) Added(next Schema) []string {
	var cols []string
	for n := s.Width + 1; n <= next.Width; n++ {
		cols = append(cols, OnsetColumn(n), OffsetColumn(n))
	}
	return cols
}
