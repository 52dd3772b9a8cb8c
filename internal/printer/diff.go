package printer

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders a line diff from expected to actual. Unchanged lines are prefixed with two spaces,
// removed lines with "- " and added lines with "+ ". It returns an empty string when the inputs are equal.
func Diff(expected string, actual string, palette Palette) string {
	if expected == actual {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix, paint := "  ", fmt.Sprint
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+ ", palette.Added
		case diffmatchpatch.DiffDelete:
			prefix, paint = "- ", palette.Removed
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(paint(prefix + strings.TrimSuffix(line, "\n")))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
