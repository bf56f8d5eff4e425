package network

import (
	"regexp"
	"strings"
)

var errorCodePattern = regexp.MustCompile(`(?i)error code:\s*(\w+(?:\s*\[0x[0-9a-f]+\])?)`)

const timeMarker = "(time:"

// ExceptionMessage returns the exception text before the "(Time:" marker,
// trimmed. Empty input yields an empty message.
func ExceptionMessage(exception string) string {
	if strings.TrimSpace(exception) == "" {
		return ""
	}
	if idx := strings.Index(strings.ToLower(exception), timeMarker); idx >= 0 {
		exception = exception[:idx]
	}
	return strings.TrimSpace(exception)
}

// ErrorCode returns the first "error code: X [0x..]" value found in the
// exception text, or an empty string.
func ErrorCode(exception string) string {
	m := errorCodePattern.FindStringSubmatch(exception)
	if m == nil {
		return ""
	}
	return m[1]
}
