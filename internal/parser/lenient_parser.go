package parser

import (
	"strings"
	"unicode"
)

// DefaultMaxRepairIterations bounds the truncate-and-repair loop per line
const DefaultMaxRepairIterations = 20

// LenientParser recovers records from truncated or slightly malformed lines
type LenientParser struct {
	BaseParser
	maxIterations int
}

// NewLenientParser creates a lenient parser. A non-positive limit selects
// DefaultMaxRepairIterations.
func NewLenientParser(maxIterations int) *LenientParser {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxRepairIterations
	}
	p := &LenientParser{maxIterations: maxIterations}
	p.BaseParser = BaseParser{name: "lenient", parse: p.Parse}
	return p
}

// WithMaxIterations returns a copy of the parser using a different loop bound
func (p *LenientParser) WithMaxIterations(n int) *LenientParser {
	return NewLenientParser(n)
}

// MaxIterations returns the loop bound
func (p *LenientParser) MaxIterations() int {
	return p.maxIterations
}

// Parse decodes line directly and, when that fails, repeatedly truncates
// the text to a plausible boundary and repairs it until a decode succeeds.
// The input line itself is never modified.
func (p *LenientParser) Parse(line string) (*Record, error) {
	if isBlank(line) {
		return nil, &ParseError{Reason: ReasonEmptyInput, Offset: -1}
	}

	rec, perr := decodeRecord(line)
	if perr == nil {
		return rec, nil
	}

	working := strings.TrimRightFunc(line, unicode.IsSpace)
	for i := 0; i < p.maxIterations; i++ {
		// the decoder pinpointed the bad byte: cut there and decode again
		if off := perr.Offset; off > 0 && off < len(working) {
			working = working[:off]
			if rec, perr = decodeRecord(working); perr == nil {
				return rec, nil
			}
			continue
		}

		cut := strings.LastIndexAny(working, ",}]")
		if cut < 0 {
			return nil, &ParseError{Reason: ReasonUnparseable, Offset: -1, Err: perr.Err}
		}
		if working[cut] == ',' {
			working = working[:cut]
		} else {
			working = working[:cut+1]
		}

		repaired, ok := Repair(working)
		if !ok {
			return nil, &ParseError{Reason: ReasonEmptyInput, Offset: -1, Err: perr.Err}
		}
		if rec, perr = decodeRecord(repaired); perr == nil {
			return rec, nil
		}
		working = repaired
	}

	return nil, &ParseError{Reason: ReasonRepairExhausted, Offset: -1, Err: perr.Err}
}
