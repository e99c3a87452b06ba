package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// SanitizeString trims single-line text and drops control characters.
// Markup is kept as typed; escaping belongs to whoever renders it.
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(input) {
		if unicode.IsPrint(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SanitizeEmail lower-cases, trims and strips markup and control characters.
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = stripHTML(email)
	return removeControlChars(email)
}

// SanitizeIdentifier is used for usernames: trimmed, no markup, no control characters.
// Case is preserved.
func SanitizeIdentifier(input string) string {
	return removeControlChars(stripHTML(strings.TrimSpace(input)))
}

// SanitizeText sanitizes multi-line free text, keeping newlines and tabs.
func SanitizeText(input string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(input) {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SanitizeOptional applies fn to *s when set.
func SanitizeOptional(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	v := fn(*s)
	return &v
}

func stripHTML(input string) string {
	return htmlTag.ReplaceAllString(input, "")
}

func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
