// Package dataset reads and writes the experiment's tidy results file: one
// row per trial, grouped by participant.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column names the pipeline relies on.
const (
	ColParticipant   = "Participant"
	ColTranscription = "Transcription"
	ColArchive       = "RecordingsArchive"
	ColWebm          = "WebmFileName"
	ColStripSeconds  = "SecondsToStripFromFrontOfRecording"
)

// Cell markers used on write.
const (
	NA  = "NA"
	Inf = "inf"
)

// Table is an in-memory CSV with a header row.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// New builds a table from a header and rows. Short rows are padded.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows}
	for i := range t.Rows {
		t.Rows[i] = pad(t.Rows[i], len(header))
	}
	t.reindex()
	return t
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[h] = i
	}
}

// Load reads a CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: no header", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i, row := range records[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("read %s: row %d has %d fields, header has %d", path, i+2, len(row), len(header))
		}
	}
	return New(header, records[1:]), nil
}

// Save writes the table to path atomically via a temp file and rename.
func (t *Table) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Col returns the position of a column.
func (t *Table) Col(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Col(name)
	return ok
}

// Get returns the cell or "" when the column does not exist.
func (t *Table) Get(row int, col string) string {
	i, ok := t.Col(col)
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes a cell, adding the column if needed.
func (t *Table) Set(row int, col string, v string) {
	i := t.EnsureColumn(col)
	t.Rows[row][i] = v
}

// EnsureColumn appends a column filled with NA unless it already exists.
func (t *Table) EnsureColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.Header = append(t.Header, name)
	for r := range t.Rows {
		t.Rows[r] = append(t.Rows[r], NA)
	}
	t.index[name] = len(t.Header) - 1
	return len(t.Header) - 1
}

// RemoveColumns drops every column whose name matches drop.
func (t *Table) RemoveColumns(drop func(name string) bool) {
	keep := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if !drop(h) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Header) {
		return
	}

	header := make([]string, len(keep))
	for j, i := range keep {
		header[j] = t.Header[i]
	}
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		t.Rows[r] = out
	}
	t.Header = header
	t.reindex()
}

// Participants returns the participant ids in first-appearance order.
func (t *Table) Participants() []string {
	var out []string
	seen := make(map[string]bool)
	for r := range t.Rows {
		p := strings.TrimSpace(t.Get(r, ColParticipant))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// TrialRows returns the row numbers of a participant's trials in table
// order. Trial index i (1-based) is TrialRows(p)[i-1].
func (t *Table) TrialRows(participant string) []int {
	var out []int
	for r := range t.Rows {
		if strings.TrimSpace(t.Get(r, ColParticipant)) == participant {
			out = append(out, r)
		}
	}
	return out
}

// IsMissing reports whether a cell holds one of the dataset's absent
// markers.
func IsMissing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", NA, "nan", "NaN", "<NA>":
		return true
	}
	return false
}

// FormatFloat renders a timing cell: NaN as NA, infinities as inf.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return NA
	case math.IsInf(v, 1):
		return Inf
	case math.IsInf(v, -1):
		return "-" + Inf
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseFloat is the inverse of FormatFloat. Missing markers give NaN.
func ParseFloat(s string) (float64, error) {
	if IsMissing(s) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
