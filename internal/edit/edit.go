// Package edit models file-change proposals extracted from model responses
// and applies them to the workspace after confirmation.
package edit

import (
	"fmt"
	"strings"
)

// Kind distinguishes the supported proposal forms.
type Kind int

const (
	// KindCreate writes a whole file, creating parents as needed.
	KindCreate Kind = iota
	// KindReplaceBlock replaces one exact block of existing content.
	KindReplaceBlock
	// KindReplaceLines edits individual lines addressed by number.
	KindReplaceLines
)

// String returns the tag name used in the wire protocol.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "CREATE"
	case KindReplaceBlock:
		return "REPLACE"
	case KindReplaceLines:
		return "REPLACE-LINES"
	default:
		return "UNKNOWN"
	}
}

// LineOp is the per-line operation within a KindReplaceLines proposal.
type LineOp byte

const (
	// LineReplace sets the content of an existing line ("+N | text").
	LineReplace LineOp = '+'
	// LineDelete removes a line ("-N |").
	LineDelete LineOp = '-'
	// LineInsertAfter inserts a new line after line N ("~N | text").
	LineInsertAfter LineOp = '~'
)

// LineEdit is a single numbered line change.
type LineEdit struct {
	Op      LineOp
	Line    int // 1-based
	Content string
}

// Op is one file-change proposal produced by the parser.
type Op struct {
	Kind Kind
	Path string

	// Content holds the full file body for KindCreate.
	Content string

	// OldBlock/NewBlock hold the exact-match replacement for KindReplaceBlock.
	OldBlock string
	NewBlock string

	// Lines holds the numbered edits for KindReplaceLines.
	Lines []LineEdit
}

// Describe returns a one-line human summary for previews and logs.
func (o Op) Describe() string {
	switch o.Kind {
	case KindCreate:
		return fmt.Sprintf("CREATE %s (%d lines)", o.Path, countLines(o.Content))
	case KindReplaceBlock:
		return fmt.Sprintf("REPLACE block in %s (%d -> %d lines)",
			o.Path, countLines(o.OldBlock), countLines(o.NewBlock))
	case KindReplaceLines:
		return fmt.Sprintf("REPLACE %d line(s) in %s", len(o.Lines), o.Path)
	default:
		return fmt.Sprintf("unknown operation on %s", o.Path)
	}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
