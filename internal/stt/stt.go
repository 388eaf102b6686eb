// Package stt produces first-pass transcriptions of trial recordings.
package stt

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoSpeech is returned when the service recognized nothing.
var ErrNoSpeech = errors.New("no speech recognized")

// Recognizer transcribes one audio file.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (string, error)
}

// AsQuestion normalizes a raw transcript the way the experiment's
// transcribers write them: sentence case with a trailing question mark.
func AsQuestion(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:]) + "?"
}
