package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// mentionRe finds @path/to/file and @codebase references in user input.
var mentionRe = regexp.MustCompile(`@[\w./\-_]+`)

// ExpandMentions replaces @file and @codebase mentions with injected content.
// It returns the text sent to the model and the cleaned text kept in history.
func (w *Workspace) ExpandMentions(input string) (forModel string, forHistory string) {
	matches := mentionRe.FindAllStringIndex(input, -1)
	if len(matches) == 0 {
		return input, input
	}

	var injected strings.Builder
	seen := make(map[string]struct{})
	var spans [][2]int

	for _, m := range matches {
		mention := input[m[0]:m[1]]
		target := strings.TrimPrefix(mention, "@")
		if _, dup := seen[target]; dup {
			spans = append(spans, [2]int{m[0], m[1]})
			continue
		}
		seen[target] = struct{}{}
		spans = append(spans, [2]int{m[0], m[1]})

		if target == "codebase" {
			fmt.Fprintf(&injected, "--- CODEBASE STRUCTURE ---\n```\n%s\n```\n--- END CODEBASE STRUCTURE ---\n\n", w.Tree())
			continue
		}

		block, err := w.ReadNumbered(target)
		if err != nil {
			fmt.Fprintf(&injected, "[note: mentioned file %q could not be read: %v]\n\n", target, err)
			continue
		}
		injected.WriteString(block)
		injected.WriteString("\n\n")
	}

	cleaned := removeSpans(input, spans)
	if injected.Len() == 0 {
		return input, input
	}
	return injected.String() + cleaned, cleaned
}

// removeSpans drops the given byte ranges from s and normalizes whitespace.
func removeSpans(s string, spans [][2]int) string {
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	var sb strings.Builder
	last := 0
	for _, sp := range spans {
		sb.WriteString(s[last:sp[0]])
		last = sp[1]
	}
	sb.WriteString(s[last:])
	return strings.Join(strings.Fields(sb.String()), " ")
}

// MentionCompletions offers completions for a line ending in an @ mention,
// for use with the REPL line editor.
func (w *Workspace) MentionCompletions(line string) []string {
	at := strings.LastIndex(line, "@")
	if at < 0 {
		return nil
	}
	prefix := line[at+1:]
	if strings.ContainsAny(prefix, " \t") {
		return nil
	}
	head := line[:at]

	var out []string
	if strings.HasPrefix("codebase", prefix) {
		out = append(out, head+"@codebase")
	}

	dir, base := filepath.Split(prefix)
	entries, err := os.ReadDir(filepath.Join(w.root, dir))
	if err != nil {
		return out
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, base) {
			continue
		}
		candidate := dir + name
		if e.IsDir() {
			candidate += "/"
		}
		out = append(out, head+"@"+candidate)
	}
	sort.Strings(out)
	return out
}
