// Package parser extracts structured proposals from model responses.
//
// The model speaks a tagged protocol embedded in its prose:
//
//	====== CREATE path      whole-file content             ====== CEND
//	======= REPLACE path    old block / ======= TO / new   ======= REND
//	====== REPLACE path     +N | / -N | / ~N | line edits  ====== REND
//	====== TERMINAL         shell command                  ====== TEND
//	====== ASK_FOR_FILES    one path per line              ====== AEND
//	====== ASK_TO_USER format:<normal|options|yesno> ...   ====== QEND
//
// and a trailing [END] marker closes a multi-step model turn.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"codagent/internal/edit"
)

// Question is a model request for user input before it continues.
type Question struct {
	Format  string // normal, options, yesno
	Text    string
	Options []string // populated for the options format
}

// Response is everything extracted from one model reply.
type Response struct {
	// Text is the prose with all recognized tags removed.
	Text string
	// Done is set when the reply carried the [END] marker.
	Done bool

	Ops          []edit.Op
	Commands     []string
	FileRequests []string
	Question     *Question
}

// HasActions reports whether the reply proposed anything that needs handling
// beyond displaying prose.
func (r *Response) HasActions() bool {
	return len(r.Ops) > 0 || len(r.Commands) > 0 || len(r.FileRequests) > 0 || r.Question != nil
}

var (
	createRe = regexp.MustCompile(`(?ms)^====== CREATE[ \t]+([^\n]+)\n(.*?)\n====== CEND[ \t]*$`)

	blockReplaceRe = regexp.MustCompile(`(?ms)^======= REPLACE[ \t]+([^\n]+)\n(.*?)\n======= TO\n(.*?)\n======= REND[ \t]*$`)

	lineReplaceRe = regexp.MustCompile(`(?ms)^====== REPLACE[ \t]+([^\n]+)\n(.*?)\n====== REND[ \t]*$`)
	lineEditRe    = regexp.MustCompile(`^\s*([+\-~])(\d+)\s*\|(.*)$`)

	terminalRe = regexp.MustCompile(`(?ms)^====== TERMINAL[ \t]*\n(.*?)\n====== TEND[ \t]*$`)
	askFilesRe = regexp.MustCompile(`(?ms)^====== ASK_FOR_FILES[ \t]*\n(.*?)\n====== AEND[ \t]*$`)
	askUserRe  = regexp.MustCompile(`(?ms)^====== ASK_TO_USER format:(\w+)[ \t]*\n(.*?)\n====== QEND[ \t]*$`)

	fenceRe = regexp.MustCompile("(?s)^\\s*```[\\w]*\\n?(.*?)\\n?```\\s*$")
)

// Parse extracts tags from a raw model reply.
func Parse(raw string) *Response {
	text, done := splitEndMarker(raw)
	resp := &Response{Done: done}

	// Block replaces first: their seven-equals prefix would otherwise be
	// swallowed by the six-equals line-replace pattern.
	text = blockReplaceRe.ReplaceAllStringFunc(text, func(m string) string {
		sm := blockReplaceRe.FindStringSubmatch(m)
		oldBlock, newBlock := sm[2], sm[3]
		if strings.TrimSpace(oldBlock) == "" || strings.TrimSpace(newBlock) == "" {
			return ""
		}
		resp.Ops = append(resp.Ops, edit.Op{
			Kind:     edit.KindReplaceBlock,
			Path:     strings.TrimSpace(sm[1]),
			OldBlock: oldBlock,
			NewBlock: newBlock,
		})
		return ""
	})

	text = createRe.ReplaceAllStringFunc(text, func(m string) string {
		sm := createRe.FindStringSubmatch(m)
		content := stripFences(sm[2])
		if content == "" {
			return ""
		}
		resp.Ops = append(resp.Ops, edit.Op{
			Kind:    edit.KindCreate,
			Path:    strings.TrimSpace(sm[1]),
			Content: content,
		})
		return ""
	})

	text = lineReplaceRe.ReplaceAllStringFunc(text, func(m string) string {
		sm := lineReplaceRe.FindStringSubmatch(m)
		edits := parseLineEdits(sm[2])
		if len(edits) == 0 {
			return ""
		}
		edit.SortLineEdits(edits)
		resp.Ops = append(resp.Ops, edit.Op{
			Kind:  edit.KindReplaceLines,
			Path:  strings.TrimSpace(sm[1]),
			Lines: edits,
		})
		return ""
	})

	text = terminalRe.ReplaceAllStringFunc(text, func(m string) string {
		sm := terminalRe.FindStringSubmatch(m)
		if cmd := strings.TrimSpace(sm[1]); cmd != "" {
			resp.Commands = append(resp.Commands, cmd)
		}
		return ""
	})

	text = askFilesRe.ReplaceAllStringFunc(text, func(m string) string {
		sm := askFilesRe.FindStringSubmatch(m)
		for _, line := range strings.Split(sm[1], "\n") {
			if p := strings.TrimSpace(line); p != "" {
				resp.FileRequests = append(resp.FileRequests, p)
			}
		}
		return ""
	})

	text = askUserRe.ReplaceAllStringFunc(text, func(m string) string {
		if resp.Question != nil {
			return "" // one question per reply; extras are dropped
		}
		sm := askUserRe.FindStringSubmatch(m)
		resp.Question = parseQuestion(sm[1], sm[2])
		return ""
	})

	resp.Text = strings.TrimSpace(text)
	return resp
}

// splitEndMarker strips a trailing [END] tag.
func splitEndMarker(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "[END]") {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, "[END]")), true
	}
	return text, false
}

// parseLineEdits reads "+N | content", "-N |" and "~N | content" lines.
// Exactly one space after the pipe is treated as a separator.
func parseLineEdits(block string) []edit.LineEdit {
	var edits []edit.LineEdit
	for _, line := range strings.Split(block, "\n") {
		sm := lineEditRe.FindStringSubmatch(line)
		if sm == nil {
			continue
		}
		num, err := strconv.Atoi(sm[2])
		if err != nil {
			continue
		}
		content := sm[3]
		content = strings.TrimPrefix(content, " ")
		edits = append(edits, edit.LineEdit{
			Op:      edit.LineOp(sm[1][0]),
			Line:    num,
			Content: content,
		})
	}
	return edits
}

// parseQuestion builds a Question, defaulting unknown formats to normal.
func parseQuestion(format, body string) *Question {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "normal", "options", "yesno":
	default:
		format = "normal"
	}

	q := &Question{Format: format}
	body = strings.TrimSpace(body)
	if format == "options" {
		for _, line := range strings.Split(body, "\n") {
			opt := strings.TrimSpace(line)
			if opt == "" || strings.HasPrefix(opt, "#") {
				continue
			}
			q.Options = append(q.Options, opt)
		}
		q.Text = "Choose one of the options:"
	} else {
		q.Text = body
	}
	return q
}

// stripFences removes a single wrapping markdown code fence, if present.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if sm := fenceRe.FindStringSubmatch(content); sm != nil {
		return strings.TrimSpace(sm[1])
	}
	return content
}
