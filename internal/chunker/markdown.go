package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// headingMarker is the character that opens a markdown heading line.
	headingMarker = '#'
	// maxSplitDepth caps the heading depth considered when picking a split level.
	maxSplitDepth = 3
)

// AnalyzeDepth returns the deepest heading depth found in lines, counted as
// the number of leading '#' characters. Lines such as "#tag" still count.
// Returns 0 when no line starts with a marker.
func AnalyzeDepth(lines []string) int {
	maxDepth := 0
	for _, line := range lines {
		depth := 0
		for depth < len(line) && line[depth] == headingMarker {
			depth++
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// SelectSplitLevel picks the heading level used to partition a document:
// max(1, min(maxDepth, 3) - 1). The result is always 1 or 2.
func SelectSplitLevel(maxDepth int) int {
	level := min(maxDepth, maxSplitDepth) - 1
	return max(1, level)
}

// headingPattern matches a heading with exactly level markers followed by
// whitespace and a title. Deeper headings do not match. Unicode space
// separators such as U+00A0 count as whitespace.
func headingPattern(level int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^#{%d}[\s\p{Zs}]+[^\s\p{Zs}].*$`, level))
}

// Split partitions lines into chunks at headings of exactly splitLevel.
//
// Each chunk is the most recent split heading, a blank line, and the body
// lines collected since that heading, trimmed. Body lines keep their content
// (blank lines and deeper headings included) with trailing whitespace
// removed. A split heading that arrives while the body is empty replaces the
// current heading without emitting anything, so "# A\n# B\nBody." yields only
// "# B\n\nBody.".
func Split(lines []string, splitLevel int) []string {
	matcher := headingPattern(splitLevel)

	var (
		chunks  []string
		body    []string
		heading string
	)

	flush := func() {
		chunks = append(chunks, strings.TrimSpace(heading+"\n\n"+strings.Join(body, "\n")))
		body = body[:0]
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t\r\n\v\f")
		if matcher.MatchString(line) {
			if len(body) > 0 {
				flush()
			}
			heading = line
			continue
		}
		body = append(body, line)
	}
	if len(body) > 0 {
		flush()
	}

	return dropBlank(chunks)
}

// ChunkMarkdown runs depth analysis, split-level selection and splitting over
// a markdown document.
func ChunkMarkdown(content string) []string {
	lines := SplitLines(content)
	return Split(lines, SelectSplitLevel(AnalyzeDepth(lines)))
}

// lineBreaks normalizes "\r\n" and lone "\r" endings to "\n".
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines splits content into lines. "\n", "\r\n" and "\r" all end a
// line, and a trailing line break does not produce an extra empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = lineBreaks.Replace(content)
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

func dropBlank(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
