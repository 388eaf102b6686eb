package alignment

import "fmt"

// MalformedResultError reports an aligner payload that lacks the required
// structure. It is never retried.
type MalformedResultError struct {
	Reason string
}

func (e *MalformedResultError) Error() string {
	return "malformed alignment result: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedResultError{Reason: fmt.Sprintf(format, args...)}
}

// InvariantError reports timing data that is structurally present but
// impossible, such as an aligned word ending before it starts.
type InvariantError struct {
	Word   int // 0-based position in Result.Words
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alignment invariant violated at word %d: %s", e.Word+1, e.Reason)
}
