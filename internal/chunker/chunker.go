// Package chunker splits text-bearing files into retrievable chunks.
//
// Markdown documents are partitioned at a heading level chosen from the
// deepest heading they contain. Plain text is split on blank lines and CSV
// rows become "header: value" strings.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// Supported file extensions.
const (
	ExtText     = ".txt"
	ExtMarkdown = ".md"
	ExtCSV      = ".csv"
)

// ErrUnsupportedExtension is returned by ChunkFile for extensions it does not handle.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Supported reports whether ext (with leading dot, any case) can be chunked.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtText, ExtMarkdown, ExtCSV:
		return true
	}
	return false
}

// ChunkFile dispatches content to the chunker for ext.
func ChunkFile(ext string, content []byte) ([]string, error) {
	switch strings.ToLower(ext) {
	case ExtText:
		return ChunkPlainText(string(content)), nil
	case ExtMarkdown:
		return ChunkMarkdown(string(content)), nil
	case ExtCSV:
		return ChunkCSV(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}
