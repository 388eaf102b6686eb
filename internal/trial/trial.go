// Package trial names per-trial files and pairs them by an explicit trial
// index instead of by position in a directory listing.
package trial

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Key identifies one trial. Index is 1-based: the trial's position among
// the participant's rows in the dataset.
type Key struct {
	Participant string
	Index       int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%02d", k.Participant, k.Index)
}

// Kind is one family of per-trial files.
type Kind struct {
	Name    string
	prefix  string
	ext     string
	pattern *regexp.Regexp
}

func newKind(name, prefix, ext string) Kind {
	return Kind{
		Name:    name,
		prefix:  prefix,
		ext:     ext,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)` + regexp.QuoteMeta(ext) + `$`),
	}
}

var (
	Transcription = newKind("transcription", "", ".txt")
	Audio         = newKind("audio", "item_number_", ".mp3")
	Result        = newKind("alignment result", "", ".json")
	TextGrid      = newKind("textgrid", "item_number_", ".TextGrid")
)

// FileName returns the file name for trial index i.
func (k Kind) FileName(i int) string {
	return fmt.Sprintf("%s%02d%s", k.prefix, i, k.ext)
}

// Index parses the trial index out of a file name.
func (k Kind) Index(name string) (int, bool) {
	m := k.pattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	i, err := strconv.Atoi(m[1])
	if err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// Scan lists dir and returns index -> path for every file of this kind.
// Unrelated entries are ignored. Two files with the same index are a
// DataIntegrityError.
func (k Kind) Scan(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make(map[int]string)
	var dups []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		i, ok := k.Index(e.Name())
		if !ok {
			continue
		}
		if _, seen := files[i]; seen {
			dups = append(dups, i)
			continue
		}
		files[i] = filepath.Join(dir, e.Name())
	}

	if len(dups) > 0 {
		return files, &DataIntegrityError{
			Where:  dir,
			Reason: fmt.Sprintf("duplicate %s files for trials %v", k.Name, dups),
		}
	}
	return files, nil
}

// Indices returns the keys of a scan in ascending order.
func Indices(files map[int]string) []int {
	idx := make([]int, 0, len(files))
	for i := range files {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Pair joins two scans on trial index. Indices present on only one side
// are excluded and reported as a DataIntegrityError alongside the pairs.
func Pair(left, right map[int]string, where string) ([]int, error) {
	var both, onlyLeft, onlyRight []int
	for _, i := range Indices(left) {
		if _, ok := right[i]; ok {
			both = append(both, i)
		} else {
			onlyLeft = append(onlyLeft, i)
		}
	}
	for _, i := range Indices(right) {
		if _, ok := left[i]; !ok {
			onlyRight = append(onlyRight, i)
		}
	}

	if len(onlyLeft) > 0 || len(onlyRight) > 0 {
		return both, &DataIntegrityError{
			Where:  where,
			Reason: fmt.Sprintf("unpaired trials: %v on one side, %v on the other", onlyLeft, onlyRight),
		}
	}
	return both, nil
}
