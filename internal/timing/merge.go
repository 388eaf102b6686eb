package timing

import (
	"fmt"
	"sort"

	"ibexalign/internal/dataset"
	"ibexalign/internal/trial"
)

// Merge rewrites the timing block of a participant's trials in t.
//
// The block is rebuilt at the end of the header with the widest of the
// existing schema, width and the rows given. Trials present in rows are
// fully overwritten; every other row keeps its previous values, with NA in
// columns it never had. Non-timing columns keep their order and content.
// Trial indices with no matching row in t are reported as a
// DataIntegrityError after the rest has been merged.
func Merge(t *dataset.Table, participant string, rows map[int]Row, width int) (Schema, error) {
	old := SchemaOf(t.Header)
	next := old.Widen(width)
	for _, r := range rows {
		next = next.Widen(len(r))
	}

	trialRows := t.TrialRows(participant)
	byRow := make(map[int]Row, len(rows))
	var unknown []int
	for idx, r := range rows {
		if idx < 1 || idx > len(trialRows) {
			unknown = append(unknown, idx)
			continue
		}
		byRow[trialRows[idx-1]] = r
	}

	kept := make([]map[string]string, len(t.Rows))
	for r := range t.Rows {
		if _, overwrite := byRow[r]; overwrite {
			continue
		}
		for _, col := range old.Columns() {
			if v, ok := existing(t, r, col); ok {
				if kept[r] == nil {
					kept[r] = make(map[string]string)
				}
				kept[r][col] = v
			}
		}
	}

	t.RemoveColumns(IsTimingColumn)
	for _, col := range next.Columns() {
		t.EnsureColumn(col)
	}

	for r := range t.Rows {
		if row, ok := byRow[r]; ok {
			for n := 1; n <= next.Width; n++ {
				c := Absent()
				if n <= len(row) {
					c = row[n-1]
				}
				t.Set(r, OnsetColumn(n), dataset.FormatFloat(c.Onset))
				t.Set(r, OffsetColumn(n), dataset.FormatFloat(c.Offset))
			}
			continue
		}
		for col, v := range kept[r] {
			t.Set(r, col, v)
		}
	}

	if len(unknown) > 0 {
		sort.Ints(unknown)
		return next, &trial.DataIntegrityError{
			Where:  "participant " + participant,
			Reason: fmt.Sprintf("results for trials %v but only %d rows in dataset", unknown, len(trialRows)),
		}
	}
	return next, nil
}

func existing(t *dataset.Table, row int, col string) (string, bool) {
	if !t.HasColumn(col) {
		return "", false
	}
	return t.Get(row, col), true
}
