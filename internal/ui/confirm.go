package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Prompter collects interactive decisions from the user. The interface keeps
// the apply pipeline testable without a terminal.
type Prompter interface {
	// Confirm asks a yes/no question and reports whether the user agreed.
	// The default on empty input is no.
	Confirm(question string) bool
	// Ask reads a free-form answer.
	Ask(question string) (string, error)
	// Choose presents numbered options and returns the selected index.
	Choose(question string, options []string) (int, error)
}

// StdinPrompter reads decisions from an input stream, normally os.Stdin.
type StdinPrompter struct {
	r *bufio.Reader
}

// NewStdinPrompter returns a Prompter reading from r, or os.Stdin when nil.
func NewStdinPrompter(r io.Reader) *StdinPrompter {
	if r == nil {
		r = os.Stdin
	}
	return &StdinPrompter{r: bufio.NewReader(r)}
}

func (p *StdinPrompter) Confirm(question string) bool {
	fmt.Print(Prompt("%s (y/N): ", question))
	line, err := p.r.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
}

func (p *StdinPrompter) Ask(question string) (string, error) {
	fmt.Print(Prompt("%s ", question))
	line, err := p.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *StdinPrompter) Choose(question string, options []string) (int, error) {
	Info("%s", question)
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}
	for {
		fmt.Print(Prompt("Enter a number (1-%d): ", len(options)))
		line, err := p.r.ReadString('\n')
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		Warning("Invalid choice.")
	}
}
