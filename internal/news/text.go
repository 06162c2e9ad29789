package news

import (
	"strings"
	"unicode/utf8"

	"news-classifier/internal/shared/apperr"
)

const (
	MinTextLength    = 15
	MaxTextLength    = 50000
	storedTextLength = 1000
)

const (
	msgNoText   = "No text provided for analysis"
	msgTooShort = "Text too short for meaningful analysis (minimum 15 characters)"
)

// prepareText trims raw and enforces the length bounds. Lengths are counted
// in characters. truncated reports whether the text was cut to MaxTextLength.
func prepareText(raw string) (text string, truncated bool, err error) {
	text = strings.TrimSpace(raw)
	if text == "" {
		return "", false, apperr.New(apperr.KindValidation, msgNoText)
	}
	n := runeLen(text)
	if n < MinTextLength {
		return "", false, apperr.New(apperr.KindValidation, msgTooShort)
	}
	if n > MaxTextLength {
		return truncate(text, MaxTextLength), true, nil
	}
	return text, false, nil
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
