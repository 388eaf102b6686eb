package alignment

import (
	"encoding/json"
	"fmt"
	"os"
)

// Aligner case markers. Any case other than caseSuccess is read as
// unaligned.
const (
	caseSuccess  = "success"
	caseNotFound = "not-found-in-audio"
)

// rawResult mirrors the aligner JSON. Pointers distinguish absent fields
// from zero values; unknown fields are ignored.
type rawResult struct {
	Transcript *string    `json:"transcript"`
	Words      *[]rawWord `json:"words"`
}

type rawWord struct {
	Case        *string  `json:"case"`
	Word        string   `json:"word"`
	AlignedWord *string  `json:"alignedWord"`
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
}

// Parse decodes one aligner response.
func Parse(raw []byte) (Result, error) {
	var r rawResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, malformed("decode: %v", err)
	}
	if r.Transcript == nil {
		return Result{}, malformed("missing transcript")
	}
	if r.Words == nil {
		return Result{}, malformed("missing words")
	}

	res := Result{
		Transcript: *r.Transcript,
		Words:      make([]WordJudgment, 0, len(*r.Words)),
	}
	if res.Transcript == "" && len(*r.Words) > 0 {
		return Result{}, malformed("empty transcript with %d words", len(*r.Words))
	}

	for i, w := range *r.Words {
		if w.Case == nil {
			return Result{}, malformed("word %d: missing case", i+1)
		}
		if *w.Case != caseSuccess {
			res.Words = append(res.Words, WordJudgment{Word: w.Word, Outcome: Unaligned})
			continue
		}

		if w.Start == nil || w.End == nil {
			return Result{}, malformed("word %d: aligned without start/end", i+1)
		}
		text := w.Word
		if w.AlignedWord != nil {
			text = *w.AlignedWord
		}
		if text == "" {
			return Result{}, malformed("word %d: aligned without text", i+1)
		}
		if *w.Start < 0 {
			return Result{}, &InvariantError{Word: i, Reason: fmt.Sprintf("negative start %v", *w.Start)}
		}
		if *w.Start > *w.End {
			return Result{}, &InvariantError{Word: i, Reason: fmt.Sprintf("start %v after end %v", *w.Start, *w.End)}
		}

		res.Words = append(res.Words, WordJudgment{
			Word:    w.Word,
			Text:    text,
			Outcome: Aligned,
			Start:   *w.Start,
			End:     *w.End,
		})
	}
	return res, nil
}

// ReadFile loads and parses a stored result file.
func ReadFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	res, err := Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Encode renders a result in the aligner's JSON shape so that synthesized
// results are indistinguishable from real ones on disk.
func Encode(r Result) ([]byte, error) {
	out := struct {
		Transcript string           `json:"transcript"`
		Words      []map[string]any `json:"words"`
	}{
		Transcript: r.Transcript,
		Words:      make([]map[string]any, 0, len(r.Words)),
	}
	for _, w := range r.Words {
		m := map[string]any{"case": w.Outcome.String(), "word": w.Word}
		if w.Outcome == Aligned {
			m["alignedWord"] = w.Text
			m["start"] = w.Start
			m["end"] = w.End
		}
		out.Words = append(out.Words, m)
	}
	return json.MarshalIndent(out, "", "  ")
}

// WriteFile stores a result as JSON.
func WriteFile(path string, r Result) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
