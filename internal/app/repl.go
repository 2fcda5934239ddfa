package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"codagent/internal/session"
	"codagent/internal/ui"
)

var slashCommands = map[string]string{
	"/help":  "show this help",
	"/clear": "forget the conversation so far",
	"/save":  "write the conversation transcript to a markdown file",
	"/tree":  "print the project structure the model sees",
	"/exit":  "leave the session",
	"/quit":  "leave the session",
}

// Run is the interactive loop. It reads prompts with line editing, history
// and @-mention completion, and drives one model turn per input.
func (a *App) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(a.completer())

	historyFile := session.HistoryFilePath(a.Applier.Root())
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	a.banner()

	for {
		// liner miscounts the cursor on ANSI-colored prompts, so keep it plain.
		input, err := line.Prompt("You: ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			fmt.Println()
			ui.Info("Bye.")
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if done, handled := a.dispatch(input); handled {
			if done {
				ui.Info("Bye.")
				return nil
			}
			continue
		}

		if err := a.RunTurn(ctx, input); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			ui.Error("Model request failed: %v", err)
		}
	}
}

// dispatch handles slash commands and the bare exit words. The second return
// is false when the input is a regular prompt for the model.
func (a *App) dispatch(input string) (done, handled bool) {
	lower := strings.ToLower(input)
	if lower == "exit" || lower == "quit" {
		return true, true
	}
	if !strings.HasPrefix(input, "/") {
		return false, false
	}

	switch fields := strings.Fields(lower); fields[0] {
	case "/exit", "/quit":
		return true, true
	case "/help":
		a.printHelp()
	case "/clear":
		a.Sess.Clear()
		a.WS.ResetChanges()
		ui.Success("Conversation cleared.")
	case "/save":
		path, err := a.Sess.SaveTranscript(a.Applier.Root())
		if err != nil {
			ui.Error("Could not save transcript: %v", err)
		} else {
			ui.Success("Transcript saved to %s", path)
		}
	case "/tree":
		tree := a.WS.Tree()
		if tree == "" {
			ui.Info("Workspace is empty.")
		} else {
			fmt.Println(tree)
		}
	default:
		ui.Warning("Unknown command %s. Try /help.", fields[0])
	}
	return false, true
}

func (a *App) printHelp() {
	names := make([]string, 0, len(slashCommands))
	for name := range slashCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%-8s %s\n", name, slashCommands[name])
	}
	sb.WriteString("\nMention files with @path/to/file or the whole project with @codebase.")
	ui.PrintBoxed("Commands", sb.String(), ui.InfoColor)
}

func (a *App) banner() {
	ui.Header("codagent — %s", a.Client.Model())
	ui.Info("Working in %s. Type /help for commands, exit to leave.", a.Applier.Root())
}

// completer offers slash commands at the start of a line and @-mention
// completions anywhere else.
func (a *App) completer() func(string) []string {
	return func(line string) []string {
		if strings.HasPrefix(line, "/") {
			var out []string
			for name := range slashCommands {
				if strings.HasPrefix(name, line) {
					out = append(out, name)
				}
			}
			sort.Strings(out)
			return out
		}
		return a.WS.MentionCompletions(line)
	}
}
