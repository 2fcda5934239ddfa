// Package ui provides colored terminal output for the interactive session.
package ui

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta, color.Bold)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// Prompt formats a prompt string without printing it.
func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// ansiRe matches CSI sequences and single-character escapes.
var ansiRe = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// visibleLen is the display width of s with ANSI escapes removed.
func visibleLen(s string) int {
	return len([]rune(ansiRe.ReplaceAllString(s, "")))
}

// termWidth returns the terminal width, defaulting to 80.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w < 20 {
		return 80
	}
	return w
}

// PrintBoxed prints content inside a rounded border with a centered title.
func PrintBoxed(title, content string, c *color.Color) {
	if c == nil {
		c = InfoColor
	}
	maxWidth := termWidth()

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	inner := visibleLen(title)
	for _, line := range lines {
		if w := visibleLen(line); w > inner {
			inner = w
		}
	}
	if inner+4 > maxWidth {
		inner = maxWidth - 4
	}
	// The title can outgrow the clamped width (long file paths); cut it like
	// any other line so the padding below never goes negative.
	if visibleLen(title) > inner {
		title = truncateVisible(title, inner)
	}

	c.Fprintf(os.Stdout, "╭%s╮\n", strings.Repeat("─", inner+2))
	pad := inner - visibleLen(title)
	c.Fprintf(os.Stdout, "│ %s%s%s │\n", strings.Repeat(" ", pad/2), title, strings.Repeat(" ", pad-pad/2))
	c.Fprintf(os.Stdout, "│%s│\n", strings.Repeat("─", inner+2))
	for _, line := range lines {
		w := visibleLen(line)
		if w > inner {
			line = truncateVisible(line, inner)
			w = inner
		}
		c.Fprint(os.Stdout, "│ ")
		fmt.Fprint(os.Stdout, line)
		fmt.Fprint(os.Stdout, strings.Repeat(" ", inner-w))
		c.Fprint(os.Stdout, " │\n")
	}
	c.Fprintf(os.Stdout, "╰%s╯\n", strings.Repeat("─", inner+2))
}

// truncateVisible cuts a line to width visible characters, dropping any ANSI
// state tracking for simplicity.
func truncateVisible(line string, width int) string {
	plain := []rune(ansiRe.ReplaceAllString(line, ""))
	if len(plain) <= width {
		return string(plain)
	}
	if width <= 3 {
		return string(plain[:width])
	}
	return string(plain[:width-3]) + "..."
}

// Markdown renders assistant prose as terminal markdown. It falls back to the
// raw text when rendering fails (e.g. no TTY).
func Markdown(text string) string {
	width := termWidth()
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}
