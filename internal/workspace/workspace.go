// Package workspace tracks the files the session touches and renders the
// file context that is sent to the model each turn.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ignoredDirs are never listed in the tree or scanned for context.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	".vscode":      {},
	"__pycache__":  {},
	"node_modules": {},
	"venv":         {},
	".codagent":    {},
}

// Workspace is the directory the agent operates in plus per-session bookkeeping
// of which files the model created or modified.
type Workspace struct {
	root     string
	created  map[string]struct{}
	modified map[string]struct{}
}

// New returns a Workspace rooted at dir.
func New(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	return &Workspace{
		root:     abs,
		created:  make(map[string]struct{}),
		modified: make(map[string]struct{}),
	}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string { return w.root }

// RecordCreated marks a path as created this session.
func (w *Workspace) RecordCreated(path string) {
	rel := w.relative(path)
	w.created[rel] = struct{}{}
	delete(w.modified, rel)
}

// RecordModified marks a path as modified this session, unless it was
// created here first.
func (w *Workspace) RecordModified(path string) {
	rel := w.relative(path)
	if _, ok := w.created[rel]; ok {
		return
	}
	w.modified[rel] = struct{}{}
}

// Created lists files created this session, sorted.
func (w *Workspace) Created() []string { return sortedKeys(w.created) }

// Modified lists files modified this session, sorted.
func (w *Workspace) Modified() []string { return sortedKeys(w.modified) }

// ResetChanges forgets which files were touched this session.
func (w *Workspace) ResetChanges() {
	w.created = make(map[string]struct{})
	w.modified = make(map[string]struct{})
}

func (w *Workspace) relative(path string) string {
	if rel, err := filepath.Rel(w.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Tree renders the directory structure, skipping ignored and hidden entries.
func (w *Workspace) Tree() string {
	var sb strings.Builder
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == w.root {
				return nil
			}
			if _, skip := ignoredDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		} else if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator))
		sb.WriteString(strings.Repeat("    ", depth))
		sb.WriteString(name)
		if d.IsDir() {
			sb.WriteByte('/')
		}
		sb.WriteByte('\n')
		return nil
	})
	return strings.TrimRight(sb.String(), "\n")
}

// NumberLines prepends 1-based line numbers in the "N | content" form the
// line-edit protocol refers to.
func NumberLines(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d | %s\n", i+1, line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FileContext renders the session's touched files with line-numbered content
// for inclusion in the model prompt.
func (w *Workspace) FileContext() string {
	var sb strings.Builder
	sb.WriteString("--- FILE CONTEXT ---\n")

	if created := w.Created(); len(created) > 0 {
		sb.WriteString("Files created this session:\n")
		for _, f := range created {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	if modified := w.Modified(); len(modified) > 0 {
		sb.WriteString("Files modified this session:\n")
		for _, f := range modified {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	all := append(w.Created(), w.Modified()...)
	sort.Strings(all)
	for _, rel := range all {
		data, err := os.ReadFile(filepath.Join(w.root, rel))
		if err != nil {
			fmt.Fprintf(&sb, "\n=== %s === [unreadable: %v]\n", rel, err)
			continue
		}
		fmt.Fprintf(&sb, "\n=== START: %s ===\n```\n%s\n```\n=== END: %s ===\n", rel, NumberLines(string(data)), rel)
	}

	sb.WriteString("--- END FILE CONTEXT ---")
	return sb.String()
}

// ReadNumbered returns the line-numbered content of one file for injection
// when the model asks for it.
func (w *Workspace) ReadNumbered(rel string) (string, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.root, rel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("--- FILE: %s ---\n```\n%s\n```\n--- END FILE: %s ---", rel, NumberLines(string(data)), rel), nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
