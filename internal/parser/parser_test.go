package parser

import (
	"errors"
	"strings"
	"testing"
)

const validLine = `{"name":"X","start datetime":"2024-05-01T10:00:00Z","duration in milliseconds":1000,"data":{},"children":[{"name":"Transport","duration in milliseconds":990}],"Summary":{"DirectCalls":{"(200, 0)":1}}}`

const truncatedLine = `{"name":"X","start datetime":"2024-05-01T10:00:01Z","duration in milliseconds":700,"data":{},"children":[{"name":"Transport","duration in milliseconds":690,"data":{"Client Side Req`

func TestLenientParser(t *testing.T) {
	parser := NewLenientParser(DefaultMaxRepairIterations)

	tests := []struct {
		name       string
		input      string
		wantReason Reason
		validate   func(*testing.T, *Record)
	}{
		{
			name:  "complete record",
			input: validLine,
			validate: func(t *testing.T, r *Record) {
				if r.Name != "X" {
					t.Errorf("want name X, got %s", r.Name)
				}
				if r.Duration != 1000 {
					t.Errorf("want duration 1000, got %v", r.Duration)
				}
				if len(r.Children) != 1 {
					t.Errorf("want 1 child, got %d", len(r.Children))
				}
				if r.Summary == nil || r.Summary.DirectCalls["(200, 0)"] != 1 {
					t.Errorf("want direct call summary, got %+v", r.Summary)
				}
			},
		},
		{
			name:  "truncated mid object",
			input: truncatedLine,
			validate: func(t *testing.T, r *Record) {
				if r.Name != "X" || r.Duration != 700 {
					t.Errorf("want X/700, got %s/%v", r.Name, r.Duration)
				}
				if len(r.Children) != 1 || r.Children[0].Duration != 690 {
					t.Errorf("want recovered child with duration 690, got %+v", r.Children)
				}
			},
		},
		{
			name:  "ellipsis after complete object",
			input: `{"name":"X","duration in milliseconds":700}...`,
			validate: func(t *testing.T, r *Record) {
				if r.Duration != 700 {
					t.Errorf("want duration 700, got %v", r.Duration)
				}
			},
		},
		{
			name:  "trailing garbage cut at error offset",
			input: `{"name":"X","duration in milliseconds":650} trailing`,
			validate: func(t *testing.T, r *Record) {
				if r.Duration != 650 {
					t.Errorf("want duration 650, got %v", r.Duration)
				}
			},
		},
		{
			name:  "comments and trailing commas",
			input: `{"name":"X", /* sdk */ "duration in milliseconds": 5,}`,
			validate: func(t *testing.T, r *Record) {
				if r.Duration != 5 {
					t.Errorf("want duration 5, got %v", r.Duration)
				}
			},
		},
		{
			name:  "numbers encoded as strings",
			input: `{"name":"X","duration in milliseconds":"12.5"}`,
			validate: func(t *testing.T, r *Record) {
				if r.Duration != 12.5 {
					t.Errorf("want duration 12.5, got %v", r.Duration)
				}
			},
		},
		{
			name:  "field names are case folded",
			input: `{"NAME":"X","Duration In Milliseconds":3,"unknownField":{"x":1}}`,
			validate: func(t *testing.T, r *Record) {
				if r.Name != "X" || r.Duration != 3 {
					t.Errorf("want X/3, got %s/%v", r.Name, r.Duration)
				}
			},
		},
		{
			name:  "negative duration clamped",
			input: `{"name":"X","duration in milliseconds":-4}`,
			validate: func(t *testing.T, r *Record) {
				if r.Duration != 0 {
					t.Errorf("want duration 0, got %v", r.Duration)
				}
			},
		},
		{
			name:       "garbage",
			input:      "###",
			wantReason: ReasonUnparseable,
		},
		{
			name:       "not an object",
			input:      "null",
			wantReason: ReasonUnparseable,
		},
		{
			name:       "blank",
			input:      "   ",
			wantReason: ReasonEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := parser.Parse(tt.input)
			if tt.wantReason != "" {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("want ParseError, got %v", err)
				}
				if perr.Reason != tt.wantReason {
					t.Errorf("want reason %s, got %s", tt.wantReason, perr.Reason)
				}
				if rec != nil {
					t.Errorf("want nil record on failure, got %+v", rec)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if rec.Duration < 0 {
				t.Errorf("duration must be non-negative, got %v", rec.Duration)
			}
			tt.validate(t, rec)
		})
	}
}

func TestLenientParserIterationCap(t *testing.T) {
	parser := NewLenientParser(1)

	// needs several truncation rounds; one is not enough
	line := `{"name":"X","duration in milliseconds":700,"a":[1}, "b":[2}, "c":[3}`
	if _, err := parser.Parse(line); err == nil {
		t.Fatal("want failure with a single iteration")
	}

	if parser.MaxIterations() != 1 {
		t.Errorf("want max iterations 1, got %d", parser.MaxIterations())
	}
	if NewLenientParser(0).MaxIterations() != DefaultMaxRepairIterations {
		t.Errorf("want default iterations for non-positive limit")
	}
}

func TestStrictParser(t *testing.T) {
	parser := NewStrictParser()

	if _, err := parser.Parse(validLine); err != nil {
		t.Errorf("strict parser rejected valid line: %v", err)
	}
	if _, err := parser.Parse(truncatedLine); err == nil {
		t.Error("strict parser accepted truncated line")
	}
}

func TestParseLines(t *testing.T) {
	parser := NewLenientParser(DefaultMaxRepairIterations)
	lines := []string{validLine, "", truncatedLine, "###"}

	batch := parser.ParseLines(lines)

	if batch.TotalLines != 3 {
		t.Errorf("want 3 total lines, got %d", batch.TotalLines)
	}
	if batch.Parsed() != 2 {
		t.Errorf("want 2 parsed, got %d", batch.Parsed())
	}
	if batch.Repaired != 1 {
		t.Errorf("want 1 repaired, got %d", batch.Repaired)
	}
	if batch.Failures[ReasonUnparseable] != 1 {
		t.Errorf("want 1 unparseable, got %v", batch.Failures)
	}
	if batch.Entries[1].LineNumber != 3 {
		t.Errorf("want line number 3, got %d", batch.Entries[1].LineNumber)
	}
	if batch.Entries[1].Raw != truncatedLine {
		t.Error("raw text must be kept verbatim")
	}
}

func TestParseReader(t *testing.T) {
	parser := NewLenientParser(0)
	input := validLine + "\r\n" + truncatedLine + "\n"

	batch, err := parser.ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if batch.Parsed() != 2 {
		t.Errorf("want 2 parsed, got %d", batch.Parsed())
	}
	if batch.Entries[0].Repaired {
		t.Error("complete line must not be flagged as repaired")
	}
}

func TestIsRepairCandidate(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: `{"a":1}`, want: false},
		{line: `{"a":1}   `, want: false},
		{line: `{"a":1`, want: true},
		{line: `{"a":"..."}`, want: true},
	}

	for _, tt := range tests {
		if got := IsRepairCandidate(tt.line); got != tt.want {
			t.Errorf("IsRepairCandidate(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	for _, name := range []string{"lenient", "strict", "LENIENT"} {
		p, err := factory.CreateParser(name)
		if err != nil {
			t.Errorf("CreateParser(%s) error = %v", name, err)
			continue
		}
		if p.Name() != strings.ToLower(name) {
			t.Errorf("want parser %s, got %s", strings.ToLower(name), p.Name())
		}
	}

	if _, err := factory.CreateParser("logfmt"); err == nil {
		t.Error("want error for unknown parser")
	}

	p, err := New(false, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	lp, ok := p.(*LenientParser)
	if !ok || lp.MaxIterations() != 5 {
		t.Errorf("want lenient parser with 5 iterations, got %T", p)
	}
}
