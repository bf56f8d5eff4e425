package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/yildizm/DiagSum/internal/config"
)

// stdinName is the source name used for standard input
const stdinName = "<stdin>"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// input is one named diagnostics source
type input struct {
	name    string
	content string
}

// readInput reads a whole source, decompressing it when needed and
// enforcing the configured size cap on the decompressed bytes
func readInput(path string, stdin io.Reader, cfg *config.Config) (*input, error) {
	if path == "" || path == "-" {
		content, err := readContent(stdin, "", cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &input{name: stdinName, content: content}, nil
	}

	if err := validateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}
	cleanPath := filepath.Clean(path)

	// #nosec G304 - path is validated above
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Debug("failed to close %s: %v", cleanPath, err)
		}
	}()

	log.Debug("reading %s", cleanPath)
	content, err := readContent(file, cleanPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cleanPath, err)
	}
	return &input{name: cleanPath, content: content}, nil
}

// readContent decompresses r by name or magic bytes and reads at most the
// configured maximum
func readContent(r io.Reader, name string, cfg *config.Config) (string, error) {
	decoded, closeFn, err := decompress(r, name)
	if err != nil {
		return "", err
	}
	defer closeFn()

	limit := cfg.Analysis.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(decoded, limit+1))
	if err != nil {
		return "", err
	}
	if err := cfg.CheckSize(int64(len(data))); err != nil {
		return "", err
	}
	return string(data), nil
}

// decompress wraps r in the decoder matching the file extension, falling
// back to gzip and zstd magic bytes. Brotli has no magic and is only
// selected by the .br extension.
func decompress(r io.Reader, name string) (io.Reader, func(), error) {
	noop := func() {}
	br := bufio.NewReader(r)

	kind := strings.ToLower(filepath.Ext(name))
	if kind == "" || kind == ".log" || kind == ".json" || kind == ".txt" {
		head, _ := br.Peek(len(zstdMagic))
		switch {
		case bytes.HasPrefix(head, gzipMagic):
			kind = ".gz"
		case bytes.HasPrefix(head, zstdMagic):
			kind = ".zst"
		}
	}

	switch kind {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid gzip stream: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid zstd stream: %w", err)
		}
		return zr, zr.Close, nil
	case ".br":
		return brotli.NewReader(br), noop, nil
	default:
		return br, noop, nil
	}
}

func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}
