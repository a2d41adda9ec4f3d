package pipeline

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change
const diffContext = 3

// lineDiff renders a line-oriented diff of before and after
func lineDiff(path string, before, after []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)

	for i, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", chunk)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", chunk)
		default:
			writeContext(&sb, chunk, i == 0, i == len(diffs)-1)
		}
	}

	return sb.String()
}

func splitLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			sb.WriteString("\n")
		}
	}
}

// writeContext writes the unchanged lines that border a change and marks
// the ones it skips
func writeContext(sb *strings.Builder, chunk []string, first, last bool) {
	if !first && !last && len(chunk) <= 2*diffContext {
		writeLines(sb, " ", chunk)
		return
	}

	var head, tail []string
	if !first {
		head = chunk[:min(diffContext, len(chunk))]
	}
	if !last {
		tail = chunk[max(len(head), len(chunk)-diffContext):]
	}

	writeLines(sb, " ", head)
	if len(head)+len(tail) < len(chunk) {
		sb.WriteString("@@\n")
	}
	writeLines(sb, " ", tail)
}
