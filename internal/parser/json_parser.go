package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/json-iterator/go/extra"
	"github.com/tailscale/hujson"
)

var errNotObject = errors.New("line is not a JSON object")

var (
	decoderOnce sync.Once
	recordAPI   jsoniter.API
)

// recordDecoder returns the tolerant decoder used for diagnostics records:
// unknown fields are skipped, names are matched case-insensitively and
// numbers may arrive as strings.
func recordDecoder() jsoniter.API {
	decoderOnce.Do(func() {
		extra.RegisterFuzzyDecoders()
		recordAPI = jsoniter.Config{
			CaseSensitive:         false,
			DisallowUnknownFields: false,
		}.Froze()
	})
	return recordAPI
}

// StrictParser parses lines that are already complete objects
type StrictParser struct {
	BaseParser
}

// NewStrictParser creates a parser without repair fallbacks
func NewStrictParser() *StrictParser {
	p := &StrictParser{}
	p.BaseParser = BaseParser{name: "strict", parse: p.Parse}
	return p
}

// Parse decodes a single line, failing on any syntax error
func (p *StrictParser) Parse(line string) (*Record, error) {
	if isBlank(line) {
		return nil, &ParseError{Reason: ReasonEmptyInput, Offset: -1}
	}
	rec, perr := decodeRecord(line)
	if perr != nil {
		return nil, perr
	}
	return rec, nil
}

// decodeRecord performs one tolerant decode attempt. On syntax errors the
// returned ParseError carries the offending byte offset when the decoder
// stopped before the end of the text.
func decodeRecord(text string) (*Record, *ParseError) {
	data := standardize([]byte(text))

	if perr := validateSyntax(data); perr != nil {
		return nil, perr
	}

	var rec Record
	if err := recordDecoder().Unmarshal(data, &rec); err != nil {
		return nil, &ParseError{Reason: ReasonUnparseable, Offset: -1, Err: err}
	}
	if rec.Duration < 0 {
		rec.Duration = 0
	}
	return &rec, nil
}

// standardize rewrites comments and trailing commas to whitespace. Byte
// offsets are preserved so syntax errors still point into the original text.
func standardize(data []byte) []byte {
	ast, err := hujson.Parse(data)
	if err != nil {
		return data
	}
	ast.Standardize()
	return ast.Pack()
}

func validateSyntax(data []byte) *ParseError {
	var raw json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err == nil {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return &ParseError{Reason: ReasonUnparseable, Offset: -1, Err: errNotObject}
		}
		return nil
	}

	offset := -1
	var serr *json.SyntaxError
	// Offset counts the bytes read including the bad one; end-of-input
	// errors report the full length and carry no usable position.
	if errors.As(err, &serr) && serr.Offset < int64(len(data)) {
		offset = int(serr.Offset) - 1
	}
	return &ParseError{Reason: ReasonUnparseable, Offset: offset, Err: err}
}
