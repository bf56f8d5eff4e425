package parser

import (
	"strings"
	"unicode"
)

// ellipsisMarker is appended by upstream loggers when they cut a line
const ellipsisMarker = "..."

// incompleteTail are the characters that cannot legally end a closed object
const incompleteTail = ",:. \t\r\n"

// Repair turns a truncated diagnostics object into a syntactically closed
// candidate. It never fails on odd input: the result is best effort and may
// still be invalid. The boolean is false when nothing is left to repair.
func Repair(text string) (string, bool) {
	s := strings.TrimRightFunc(text, unicode.IsSpace)
	s = strings.TrimSuffix(s, ellipsisMarker)
	s = strings.TrimRight(s, incompleteTail)
	if strings.TrimSpace(s) == "" {
		return "", false
	}

	// an odd quote count means a string was cut mid-value
	if countUnescapedQuotes(s)%2 == 1 {
		if idx := lastUnescapedQuote(s, len(s)); idx >= 0 {
			s = strings.TrimRight(s[:idx], incompleteTail)
		}
	}

	s = dropDanglingKey(s)
	if strings.TrimSpace(s) == "" {
		return "", false
	}

	return closeOpenScopes(s), true
}

// dropDanglingKey removes a trailing quoted token that sits where a property
// name would, since its value was lost.
func dropDanglingKey(s string) string {
	end := len(s) - 1
	if end < 0 || s[end] != '"' || isEscaped(s, end) {
		return s
	}

	open := lastUnescapedQuote(s, end)
	if open < 0 {
		return s
	}

	before := strings.TrimRightFunc(s[:open], unicode.IsSpace)
	if before == "" {
		return s
	}

	switch before[len(before)-1] {
	case '{', ',', '[':
		return strings.TrimRight(before, ", \t\r\n")
	}
	return s
}

// closeOpenScopes appends the closers for every object or array still open
// at the end of s, innermost first.
func closeOpenScopes(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if n := len(stack); n > 0 && stack[n-1] == openerFor(c) {
				stack = stack[:n-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(stack) + 1)
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func openerFor(closer byte) byte {
	if closer == '}' {
		return '{'
	}
	return '['
}

// isEscaped reports whether s[i] is preceded by an odd run of backslashes
func isEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func countUnescapedQuotes(s string) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && !isEscaped(s, i) {
			count++
		}
	}
	return count
}

// lastUnescapedQuote returns the index of the last unescaped quote before end
func lastUnescapedQuote(s string, end int) int {
	for i := end - 1; i >= 0; i-- {
		if s[i] == '"' && !isEscaped(s, i) {
			return i
		}
	}
	return -1
}
