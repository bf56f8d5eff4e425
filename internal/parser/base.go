package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// BaseParser provides the batch logic shared by all parsers
type BaseParser struct {
	name  string
	parse func(line string) (*Record, error)
}

// Name returns parser name
func (b *BaseParser) Name() string {
	return b.name
}

// ParseReader reads the entire input into memory and parses it
func (b *BaseParser) ParseReader(reader io.Reader) (*Batch, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return b.ParseLines(SplitLines(string(data))), nil
}

// ParseLines parses lines one by one. Blank lines are skipped; lines that
// yield no record are counted by failure reason and dropped.
func (b *BaseParser) ParseLines(lines []string) *Batch {
	batch := &Batch{
		Entries:  make([]*Entry, 0, len(lines)),
		Failures: make(map[Reason]int),
	}

	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		batch.TotalLines++

		rec, err := b.parse(line)
		if err != nil {
			batch.Failures[reasonOf(err)]++
			continue
		}

		entry := &Entry{
			Record:     rec,
			Raw:        line,
			LineNumber: i + 1,
			Repaired:   IsRepairCandidate(line),
		}
		if entry.Repaired {
			batch.Repaired++
		}
		batch.Entries = append(batch.Entries, entry)
	}

	return batch
}

// SplitLines splits content on newlines, dropping carriage returns
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// IsRepairCandidate reports whether a line looks truncated: it carries the
// ellipsis marker or does not end with a closing brace.
func IsRepairCandidate(line string) bool {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	return strings.Contains(trimmed, ellipsisMarker) || !strings.HasSuffix(trimmed, "}")
}

func reasonOf(err error) Reason {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.Reason
	}
	return ReasonUnparseable
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
