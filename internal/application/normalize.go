package application

import "strings"

// Normalize canonicalizes text for comparison: CRLF and bare CR line endings
// become LF, and leading/trailing whitespace of the whole string (not per
// line) is trimmed. Every content-equality comparison in the engine runs on
// normalized text so that line-ending churn never invalidates an anchor.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// SplitLines splits file content into lines with line endings normalized
// first, so CRLF files produce the same slice as their LF equivalents.
func SplitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
