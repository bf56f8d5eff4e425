package parser

import (
	"fmt"
	"io"
)

// Parser defines the interface for diagnostics line parsers
type Parser interface {
	// Parse parses a single line into a record
	Parse(line string) (*Record, error)

	// ParseLines parses every line, dropping the ones that fail
	ParseLines(lines []string) *Batch

	// ParseReader reads the whole input and parses it line by line
	ParseReader(reader io.Reader) (*Batch, error)

	// Name returns the parser name
	Name() string
}

// Factory creates parsers by name
type Factory interface {
	// CreateParser returns the parser registered under name
	CreateParser(name string) (Parser, error)

	// RegisterParser registers a parser under name
	RegisterParser(name string, parser Parser)
}

// Reason classifies why a line could not be parsed
type Reason string

const (
	ReasonEmptyInput      Reason = "empty_input"
	ReasonUnparseable     Reason = "unparseable"
	ReasonRepairExhausted Reason = "repair_exhausted"
)

// ParseError is returned when a line yields no record
type ParseError struct {
	Reason Reason
	// Offset is the byte position of the syntax error, or -1 when unknown
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse failed: %s", e.Reason)
	}
	return fmt.Sprintf("parse failed: %s: %v", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
