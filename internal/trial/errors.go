package trial

import "fmt"

// DataIntegrityError reports mismatched trials between the dataset and the
// files on disk, or between two file families.
type DataIntegrityError struct {
	Where  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s: %s", e.Where, e.Reason)
}

// MissingSourceFileError reports an expected per-trial input that is absent.
type MissingSourceFileError struct {
	Key  Key
	Path string
}

func (e *MissingSourceFileError) Error() string {
	return fmt.Sprintf("trial %s: missing source file %s", e.Key, e.Path)
}
