package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/orderparse/internal/extract"
)

// ErrEmptySource is returned when a source holds no visible text
var ErrEmptySource = errors.New("empty source")

// DefaultMaxSourceBytes bounds a single order text read from disk or stdin
const DefaultMaxSourceBytes = 1 << 20

// Source is one order text to parse
type Source struct {
	Name   string // file path, "stdin" or "http"
	Text   string // plain text; HTML bodies are already flattened
	IsHTML bool   // the raw input was an HTML notification body
}

// ReadSource reads a file, or stdin when path is "-"
func ReadSource(path string, maxBytes int64) (*Source, error) {
	if path == "-" {
		return ReadFrom("stdin", os.Stdin, maxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadFrom(path, f, maxBytes)
}

// ReadFrom reads a source from r with a size limit
func ReadFrom(name string, r io.Reader, maxBytes int64) (*Source, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSourceBytes
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	isHTML := strings.EqualFold(filepath.Ext(name), ".html") || strings.EqualFold(filepath.Ext(name), ".htm")
	return NewSource(name, string(body), isHTML)
}

// NewSource builds a source from text already in memory. HTML is detected
// from the content when the caller does not know.
func NewSource(name, raw string, isHTML bool) (*Source, error) {
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}
	raw = strings.TrimPrefix(raw, "\ufeff")

	if !isHTML {
		isHTML = extract.LooksLikeHTML(raw)
	}

	text := raw
	if isHTML {
		visible, err := extract.VisibleText(raw)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		text = visible
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySource)
	}

	return &Source{Name: name, Text: text, IsHTML: isHTML}, nil
}

// SourceName returns a filesystem-safe stem for report files
func SourceName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	// Replace problematic characters
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, base)

	if base == "" || base == "." {
		base = "order"
	}
	// Limit length
	if len(base) > 100 {
		base = strings.ToValidUTF8(base[:100], "")
	}
	return base
}
