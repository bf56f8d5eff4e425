package parser

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultFactory is the default parser factory
var DefaultFactory = NewFactory()

// parserFactory implements the Factory interface
type parserFactory struct {
	parsers map[string]Parser
	mu      sync.RWMutex
}

// NewFactory creates a new parser factory with the built-in parsers
func NewFactory() Factory {
	f := &parserFactory{
		parsers: make(map[string]Parser),
	}

	f.RegisterParser("lenient", NewLenientParser(DefaultMaxRepairIterations))
	f.RegisterParser("strict", NewStrictParser())

	return f
}

// CreateParser returns the parser registered under name
func (f *parserFactory) CreateParser(name string) (Parser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = strings.ToLower(name)
	if parser, ok := f.parsers[name]; ok {
		return parser, nil
	}

	return nil, fmt.Errorf("unknown parser: %s", name)
}

// RegisterParser registers a parser
func (f *parserFactory) RegisterParser(name string, parser Parser) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.parsers[strings.ToLower(name)] = parser
}

// ModeName maps the strict flag to a registered parser name
func ModeName(strict bool) string {
	if strict {
		return "strict"
	}
	return "lenient"
}

// New returns the parser for the given mode. maxIterations only applies to
// the lenient parser; zero keeps the default.
func New(strict bool, maxIterations int) (Parser, error) {
	p, err := DefaultFactory.CreateParser(ModeName(strict))
	if err != nil {
		return nil, err
	}
	if lp, ok := p.(*LenientParser); ok && maxIterations > 0 && maxIterations != lp.MaxIterations() {
		return lp.WithMaxIterations(maxIterations), nil
	}
	return p, nil
}
