// Package app wires configuration, the model client, and the workspace into
// the interactive session.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"codagent/internal/config"
	"codagent/internal/edit"
	"codagent/internal/llm"
	"codagent/internal/parser"
	"codagent/internal/prompt"
	"codagent/internal/session"
	"codagent/internal/ui"
	"codagent/internal/workspace"
)

// Completer is the slice of the llm client the turn pipeline needs.
type Completer interface {
	Model() string
	Complete(ctx context.Context, systemPrompt string, history []session.Message, stream bool, onDelta func(string)) (string, error)
}

// App holds the session state and dependencies.
type App struct {
	Config   *config.Config
	Client   Completer
	Sess     *session.Session
	WS       *workspace.Workspace
	Applier  *edit.Applier
	Prompter ui.Prompter
}

// New initializes an App for the configured workspace.
func New(cfg *config.Config) (*App, error) {
	ws, err := workspace.New(cfg.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	applier, err := edit.NewApplier(cfg.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		Client:   llm.New(cfg),
		Sess:     session.New(cfg.HistorySize),
		WS:       ws,
		Applier:  applier,
		Prompter: ui.NewStdinPrompter(nil),
	}, nil
}

// systemPrompt assembles the instruction prompt plus the current file context.
func (a *App) systemPrompt() string {
	base := prompt.BuildSystemPrompt(a.WS.Root(), a.WS.Tree())
	return base + "\n\n" + a.WS.FileContext()
}

// RunTurn drives one user turn: it keeps calling the model until the reply
// carries no further actions, the model signals [END], or the hop budget runs
// out. API errors on the first hop unwind the user message.
func (a *App) RunTurn(ctx context.Context, input string) error {
	// History keeps the cleaned input; the expanded mention content is sent
	// with the first request only, so it is not re-sent every turn.
	forModel, forHistory := a.WS.ExpandMentions(input)
	a.Sess.AddUser(forHistory)
	attachment := ""
	if forModel != forHistory {
		attachment = forModel
	}

	retriesLeft := a.Config.MaxRetries

	for hop := 0; hop < a.Config.MaxHops; hop++ {
		if a.Config.Verbose {
			log.Printf("[verbose] hop %d/%d: %d messages in window", hop+1, a.Config.MaxHops, len(a.Sess.Messages()))
		}

		streamed := false
		onDelta := func(delta string) {
			fmt.Print(delta)
			streamed = true
		}
		reply, err := a.complete(ctx, attachment, onDelta)
		if err != nil {
			if hop == 0 {
				a.Sess.DropLast()
			}
			return err
		}
		attachment = ""
		if streamed {
			fmt.Println()
		}

		a.Sess.AddAssistant(reply)
		resp := parser.Parse(reply)

		if !streamed && resp.Text != "" {
			fmt.Print(ui.Markdown(resp.Text))
		}

		if resp.Question != nil {
			answer, err := a.askUser(resp.Question)
			if err != nil {
				return err
			}
			a.Sess.AddUser(answer)
			continue
		}

		if len(resp.FileRequests) > 0 {
			a.injectRequestedFiles(resp.FileRequests)
			continue
		}

		continueTurn := false

		if len(resp.Ops) > 0 {
			retryNeeded := a.handleOps(resp.Ops, &retriesLeft)
			continueTurn = continueTurn || retryNeeded
		}

		if len(resp.Commands) > 0 {
			ran := a.handleCommands(ctx, resp.Commands)
			continueTurn = continueTurn || ran
		}

		if resp.Done || !continueTurn {
			return nil
		}
	}

	ui.Warning("Reached the per-turn hop limit (%d); returning control to you.", a.Config.MaxHops)
	return nil
}

// complete sends the history window. A non-empty attachment replaces the
// content of the trailing user message for this request only.
func (a *App) complete(ctx context.Context, attachment string, onDelta func(string)) (string, error) {
	reqCtx := ctx
	if a.Config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, a.Config.RequestTimeout)
		defer cancel()
	}
	if !a.Config.Stream {
		onDelta = nil
	}
	history := a.Sess.Messages()
	if attachment != "" && len(history) > 0 && history[len(history)-1].Role == session.RoleUser {
		history = append([]session.Message(nil), history...)
		history[len(history)-1].Content = attachment
	}
	return a.Client.Complete(reqCtx, a.systemPrompt(), history, a.Config.Stream, onDelta)
}

// askUser resolves an ASK_TO_USER question into the next user message.
func (a *App) askUser(q *parser.Question) (string, error) {
	switch q.Format {
	case "yesno":
		if a.Prompter.Confirm(q.Text) {
			return "yes", nil
		}
		return "no", nil
	case "options":
		if len(q.Options) == 0 {
			return a.Prompter.Ask(q.Text)
		}
		idx, err := a.Prompter.Choose(q.Text, q.Options)
		if err != nil {
			return "", err
		}
		return q.Options[idx], nil
	default:
		return a.Prompter.Ask(q.Text)
	}
}

// injectRequestedFiles handles an ASK_FOR_FILES request. The user sees the
// list with found/not-found markers and picks by number which files to share;
// nothing is sent to the model without a selection.
func (a *App) injectRequestedFiles(paths []string) {
	ui.Info("The model is asking for these files:")
	exists := make([]bool, len(paths))
	foundAny := false
	for i, p := range paths {
		if abs, err := a.Applier.Resolve(p); err == nil {
			if st, statErr := os.Stat(abs); statErr == nil && !st.IsDir() {
				exists[i] = true
				foundAny = true
			}
		}
		if exists[i] {
			ui.Success("  %d. %s (found)", i+1, p)
		} else {
			ui.Error("  %d. %s (not found)", i+1, p)
		}
	}

	if !foundAny {
		a.Sess.AddSystemNote("None of the requested files exist. Proceed based on existing context or ask again if necessary.")
		return
	}

	answer, err := a.Prompter.Ask("Select files to send by number (comma-separated), or press enter to skip:")
	if err != nil {
		answer = ""
	}

	var sb strings.Builder
	var shared []string
	for _, idx := range parseSelection(answer, len(paths)) {
		p := paths[idx]
		if !exists[idx] {
			ui.Warning("Skipping %s: not found", p)
			continue
		}
		block, err := a.WS.ReadNumbered(p)
		if err != nil {
			ui.Warning("Could not read %s: %v", p, err)
			continue
		}
		ui.Success("Sending %s", p)
		sb.WriteString(block)
		sb.WriteString("\n\n")
		shared = append(shared, p)
	}

	if len(shared) == 0 {
		ui.Warning("No files shared; asking the model to proceed without them.")
		a.Sess.AddSystemNote("User did not provide the requested files. Proceed based on existing context or ask again if necessary.")
		return
	}
	a.Sess.AddSystemNote(fmt.Sprintf("User selected and provided content for: %s\n\n%s",
		strings.Join(shared, ", "), strings.TrimSpace(sb.String())))
}

// parseSelection reads "1,3"-style input as zero-based indices below n.
// Blank and out-of-range entries are dropped.
func parseSelection(input string, n int) []int {
	var out []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 1 || num > n {
			continue
		}
		out = append(out, num-1)
	}
	return out
}
