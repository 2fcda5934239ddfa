package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Change is a staged file change: the resolved target plus the exact bytes
// before and after. Staging never touches the disk; only Commit writes.
type Change struct {
	Op      Op
	AbsPath string
	Old     string
	New     string
	Created bool // target did not exist before

	// Report carries partial-match diagnostics when staging failed on an
	// inexact REPLACE block.
	Report *MatchReport
}

// Applier stages and commits proposals inside a workspace root.
type Applier struct {
	root string
}

// NewApplier returns an Applier rooted at dir.
func NewApplier(dir string) (*Applier, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	return &Applier{root: filepath.Clean(abs)}, nil
}

// Root returns the workspace root all proposals resolve against.
func (a *Applier) Root() string { return a.root }

// Resolve validates a proposal path and returns its absolute form.
// Paths that escape the workspace root are rejected before any preview.
func (a *Applier) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	clean := filepath.Clean(path)
	if hasParentTraversal(clean) {
		return "", fmt.Errorf("path traversal not allowed: %s", path)
	}
	abs := clean
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(a.root, clean)
	}
	rel, err := filepath.Rel(a.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside workspace: %s", path)
	}
	return abs, nil
}

// hasParentTraversal reports whether a cleaned path contains a ".." segment.
func hasParentTraversal(cleanPath string) bool {
	if cleanPath == ".." {
		return true
	}
	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	return false
}

// Stage computes the proposed content for op without writing anything.
// The returned Change is what the diff preview and the confirmation gate
// operate on.
func (a *Applier) Stage(op Op) (*Change, error) {
	abs, err := a.Resolve(op.Path)
	if err != nil {
		return nil, err
	}

	ch := &Change{Op: op, AbsPath: abs}
	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		ch.Old = string(data)
	case os.IsNotExist(err):
		ch.Created = true
	default:
		return nil, fmt.Errorf("read %s: %w", op.Path, err)
	}

	switch op.Kind {
	case KindCreate:
		ch.New = op.Content
		if !strings.HasSuffix(ch.New, "\n") && ch.New != "" {
			ch.New += "\n"
		}
	case KindReplaceBlock:
		if ch.Created {
			return nil, fmt.Errorf("cannot replace in %s: file does not exist", op.Path)
		}
		next, report, err := replaceBlock(ch.Old, op.OldBlock, op.NewBlock)
		if err != nil {
			ch.Report = report
			return ch, err
		}
		ch.New = next
	case KindReplaceLines:
		if ch.Created {
			return nil, fmt.Errorf("cannot edit lines in %s: file does not exist", op.Path)
		}
		next, err := applyLineEdits(ch.Old, op.Lines)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.Path, err)
		}
		ch.New = next
	default:
		return nil, fmt.Errorf("unsupported operation kind %d", op.Kind)
	}

	return ch, nil
}

// Commit writes a staged change to disk, creating parent directories.
// Callers must have obtained user confirmation first.
func (a *Applier) Commit(ch *Change) error {
	if dir := filepath.Dir(ch.AbsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent directories for %s: %w", ch.Op.Path, err)
		}
	}
	if err := os.WriteFile(ch.AbsPath, []byte(ch.New), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ch.Op.Path, err)
	}
	return nil
}

// replaceBlock swaps the first exact occurrence of oldBlock for newBlock.
// On an inexact match it returns a MatchReport for the retry prompt.
func replaceBlock(content, oldBlock, newBlock string) (string, *MatchReport, error) {
	if oldBlock == "" {
		return "", nil, fmt.Errorf("old block is empty")
	}
	if strings.Contains(content, oldBlock) {
		return strings.Replace(content, oldBlock, newBlock, 1), nil, nil
	}
	report := matchBlock(content, oldBlock)
	return "", report, fmt.Errorf("old block not found in file")
}

// applyLineEdits applies numbered line edits against the original content.
// All line numbers refer to the file as it was before any of the edits.
func applyLineEdits(content string, edits []LineEdit) (string, error) {
	hadTrailingNewline := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	n := len(lines)

	replace := make(map[int]string)
	remove := make(map[int]bool)
	insertAfter := make(map[int][]string)
	var appended []string

	for _, e := range edits {
		switch e.Op {
		case LineReplace:
			if e.Line == n+1 {
				appended = append(appended, e.Content)
				continue
			}
			if e.Line < 1 || e.Line > n {
				return "", fmt.Errorf("line %d out of range (file has %d lines)", e.Line, n)
			}
			replace[e.Line] = e.Content
		case LineDelete:
			if e.Line < 1 || e.Line > n {
				return "", fmt.Errorf("line %d out of range (file has %d lines)", e.Line, n)
			}
			remove[e.Line] = true
		case LineInsertAfter:
			if e.Line < 0 || e.Line > n {
				return "", fmt.Errorf("line %d out of range (file has %d lines)", e.Line, n)
			}
			insertAfter[e.Line] = append(insertAfter[e.Line], e.Content)
		default:
			return "", fmt.Errorf("unknown line operation %q", string(e.Op))
		}
	}

	out := make([]string, 0, n+len(edits))
	out = append(out, insertAfter[0]...)
	for i := 1; i <= n; i++ {
		if !remove[i] {
			if repl, ok := replace[i]; ok {
				out = append(out, repl)
			} else {
				out = append(out, lines[i-1])
			}
		}
		out = append(out, insertAfter[i]...)
	}
	out = append(out, appended...)

	result := strings.Join(out, "\n")
	if hadTrailingNewline && result != "" {
		result += "\n"
	}
	return result, nil
}

// SortLineEdits orders edits by line number for stable previews.
func SortLineEdits(edits []LineEdit) {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Line < edits[j].Line })
}
