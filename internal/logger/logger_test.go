package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker bool

func (s staticChecker) IsVerbose() bool { return bool(s) }

func TestVerboseGating(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("parser", staticChecker(false), &buf)

	log.Debug("hidden %d", 1)
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown %s", "warn")
	log.Error("shown error")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "[parser]")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "ERROR")
}

func TestVerboseCallback(t *testing.T) {
	var buf bytes.Buffer
	verbose := false
	log := NewWithWriter("cli", &callbackChecker{callback: func() bool { return verbose }}, &buf)

	log.Info("first")
	verbose = true
	log.Info("second")

	assert.NotContains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "second")
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("", staticChecker(true), &buf)

	log.DebugWithFields("parsed", []Field{Count(3), F("file", "a.log"), Duration(time.Second), Error(errors.New("boom"))})

	out := buf.String()
	assert.Contains(t, out, "[main]")
	assert.Contains(t, out, `"count": 3`)
	assert.Contains(t, out, `"file": "a.log"`)
	assert.Contains(t, out, "boom")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("root", staticChecker(true), &buf).WithComponent("analyzer")

	log.Info("stage done")
	assert.Contains(t, buf.String(), "[analyzer]")
	assert.False(t, strings.Contains(buf.String(), "[root]"))
}

func TestConfigureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagsum.log")
	var console bytes.Buffer

	Configure(&console, &FileOptions{Path: path, MaxSizeMB: 1})
	t.Cleanup(func() { Configure(os.Stderr, nil) })

	New("watch", nil).Warn("rotated %s", "entry")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"rotated entry"`)
	assert.Contains(t, console.String(), "rotated entry")
}
