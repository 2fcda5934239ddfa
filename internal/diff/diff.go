// Package diff computes and renders line-level differences between current
// and proposed file content.
package diff

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
	hunkColor   = color.New(color.FgCyan)
	headerColor = color.New(color.Bold)
)

// Unified returns a unified diff of old against new, labelled with path.
// The result is empty when the contents are identical.
func Unified(path, oldContent, newContent string) (string, error) {
	if oldContent == newContent {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// Render colorizes a unified diff for terminal display: additions green,
// deletions red, hunk headers cyan.
func Render(unified string) string {
	if unified == "" {
		return ""
	}
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			sb.WriteString(headerColor.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			sb.WriteString(hunkColor.Sprint(line))
		case strings.HasPrefix(line, "+"):
			sb.WriteString(addColor.Sprint(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(delColor.Sprint(line))
		default:
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Stat counts added and removed lines in a unified diff.
func Stat(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
