package parser

import (
	"encoding/json"
	"testing"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "open string value drops its property",
			input:  `{"a":1,"b":"x`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "unclosed nested object",
			input:  `{"a":{"b":1`,
			want:   `{"a":{"b":1}}`,
			wantOK: true,
		},
		{
			name:   "ellipsis marker",
			input:  `{"a":1}...`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "trailing comma inside array",
			input:  `{"a":[1,2,`,
			want:   `{"a":[1,2]}`,
			wantOK: true,
		},
		{
			name:   "trailing period",
			input:  `{"a":1.`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "property name without value",
			input:  `{"k":"v","x":`,
			want:   `{"k":"v"}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside cut value",
			input:  `{"a":"he said \"hi`,
			want:   `{}`,
			wantOK: true,
		},
		{
			name:   "brackets inside strings are ignored",
			input:  `{"a":"}]"`,
			want:   `{"a":"}]"}`,
			wantOK: true,
		},
		{
			name:   "already valid",
			input:  `{"a":"x","b":[1,{"c":null}]}`,
			want:   `{"a":"x","b":[1,{"c":null}]}`,
			wantOK: true,
		},
		{
			name:   "whitespace only",
			input:  "   \t ",
			wantOK: false,
		},
		{
			name:   "only an ellipsis",
			input:  "...",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Repair(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Repair(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairOutputIsValidJSON(t *testing.T) {
	inputs := []string{
		`{"name":"ReadItemAsync","children":[{"name":"Transport","data":{"Client Side Request Stats":{"StoreResponseStatistics":[{"DurationInMs":1`,
		`{"a":{"b":{"c":[{"d":"e"},{"f":`,
		`{"a":"x\\"`,
		`{"a":[{"b":"c`,
	}

	for _, input := range inputs {
		got, ok := Repair(input)
		if !ok {
			t.Errorf("Repair(%q) returned no candidate", input)
			continue
		}
		if !json.Valid([]byte(got)) {
			t.Errorf("Repair(%q) = %q, not valid JSON", input, got)
		}
	}
}

func TestIsEscaped(t *testing.T) {
	tests := []struct {
		s    string
		i    int
		want bool
	}{
		{s: `a"`, i: 1, want: false},
		{s: `\"`, i: 1, want: true},
		{s: `\\"`, i: 2, want: false},
		{s: `\\\"`, i: 3, want: true},
	}

	for _, tt := range tests {
		if got := isEscaped(tt.s, tt.i); got != tt.want {
			t.Errorf("isEscaped(%q, %d) = %v, want %v", tt.s, tt.i, got, tt.want)
		}
	}
}
