package chunker

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// blankLineRun matches a newline followed by one or more blank lines.
var blankLineRun = regexp.MustCompile(`\n[ \t\r\f\v]*(\n[ \t\r\f\v]*)+`)

// ChunkPlainText splits content into paragraphs on blank-line runs.
// Paragraphs are trimmed and empty ones dropped.
func ChunkPlainText(content string) []string {
	parts := blankLineRun.Split(content, -1)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

// ChunkCSV turns every data row into one chunk of "header: value" pairs
// joined by ", ". Rows and headers are paired positionally up to the shorter
// of the two. A file without data rows yields no chunks.
func ChunkCSV(content []byte) ([]string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var chunks []string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		n := min(len(headers), len(row))
		pairs := make([]string, n)
		for i := 0; i < n; i++ {
			pairs[i] = headers[i] + ": " + row[i]
		}
		chunks = append(chunks, strings.Join(pairs, ", "))
	}

	return chunks, nil
}
