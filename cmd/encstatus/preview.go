package main

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxPreviewLines bounds the lines rendered by preview.
const maxPreviewLines = 5000

// quoteLines renders data one quoted line per line, keeping carriage
// returns and non-ASCII bytes visible.
func quoteLines(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	parts := strings.SplitAfter(string(data), "\n")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strconv.QuoteToASCII(p))
		b.WriteByte('\n')
	}
	return b.String()
}

// preview returns a line diff of before and after as quoted byte strings.
// Unchanged lines are prefixed with two spaces, removed ones with "- " and
// added ones with "+ ".
func preview(before, after []byte) string {
	b, a := quoteLines(before), quoteLines(after)
	if strings.Count(b, "\n")+strings.Count(a, "\n") > maxPreviewLines {
		return "(content too large to preview)\n"
	}

	dmp := diffmatchpatch.New()
	bc, ac, lines := dmp.DiffLinesToChars(b, a)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(bc, ac, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
		}
	}
	return out.String()
}
