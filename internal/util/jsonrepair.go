package util

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// LLM completions are contractually "JSON only" but in practice arrive
// wrapped in markdown fences, with raw control characters, stray
// backslashes from natural-language text, or word-processor quotes. The
// helpers here repair those defects before strict decoding. Every step is
// idempotent: repairing already-clean JSON leaves its parsed value intact.

// ExtractJSON strips a leading ```json or ``` fence and a trailing ```
// fence when present.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[7:]
	} else if strings.HasPrefix(text, "```") {
		text = text[3:]
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}
	return strings.TrimSpace(text)
}

// Sanitize repairs the character-level defects LLM output shows: carriage
// returns are dropped, tabs become spaces, backslashes that are not part of
// a valid JSON escape are escaped, and curly quotes become straight ones.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", " ")
	text = escapeStrayBackslashes(text)
	text = strings.ReplaceAll(text, "“", `"`)
	text = strings.ReplaceAll(text, "”", `"`)
	return text
}

// SanitizeAndParse runs fence extraction and sanitization, then verifies the
// result is parseable JSON. A parse failure after repair is reported as an
// error; callers substitute their fallback record instead of crashing.
func SanitizeAndParse(raw string) (string, error) {
	text := Sanitize(ExtractJSON(raw))
	if !gjson.Valid(text) {
		return "", fmt.Errorf("response is not valid JSON after sanitization")
	}
	return text, nil
}

// escapeStrayBackslashes doubles every backslash that does not begin a valid
// JSON escape sequence (\" \\ \/ \b \f \n \r \t or \uXXXX). Backslashes
// already forming valid escapes are left alone, which makes the pass
// idempotent.
func escapeStrayBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		if i+1 < len(s) && validEscapeAt(s, i+1) {
			next := s[i+1]
			b.WriteByte('\\')
			b.WriteByte(next)
			if next == 'u' {
				b.WriteString(s[i+2 : i+6])
				i += 4
			}
			i++
			continue
		}

		b.WriteString(`\\`)
	}

	return b.String()
}

func validEscapeAt(s string, i int) bool {
	switch s[i] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+5 > len(s) {
			return false
		}
		for j := i + 1; j <= i+4; j++ {
			if !isHexDigit(s[j]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
