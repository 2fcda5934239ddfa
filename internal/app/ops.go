package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"codagent/internal/diff"
	"codagent/internal/edit"
	"codagent/internal/shell"
	"codagent/internal/ui"
)

// handleOps previews the proposed file changes, asks for one confirmation
// covering the batch, and commits on approval. It reports back to the model
// via system notes and returns true when a failed block replace should be
// retried on the next hop.
func (a *App) handleOps(ops []edit.Op, retriesLeft *int) bool {
	var staged []*edit.Change
	var failures []string
	var reports []*edit.MatchReport

	for _, op := range ops {
		ch, err := a.Applier.Stage(op)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", op.Describe(), err))
			if ch != nil && ch.Report != nil {
				reports = append(reports, ch.Report)
				ui.Warning("Could not apply %s: %v", op.Describe(), err)
				fmt.Println(ch.Report.String())
			} else {
				ui.Error("Could not stage %s: %v", op.Describe(), err)
			}
			continue
		}
		staged = append(staged, ch)
	}

	applied, rejected := a.previewAndCommit(staged)

	var note strings.Builder
	for _, ch := range applied {
		verb := "modified"
		if ch.Created {
			verb = "created"
		}
		fmt.Fprintf(&note, "Applied: %s %s\n", verb, ch.Op.Path)
	}
	for _, f := range failures {
		fmt.Fprintf(&note, "Failed: %s\n", f)
	}
	if rejected {
		note.WriteString("User rejected the proposed file changes.\n")
	}
	for _, r := range reports {
		note.WriteString("\n")
		note.WriteString(r.String())
	}
	if note.Len() > 0 {
		a.Sess.AddSystemNote(strings.TrimSpace(note.String()))
	}

	if len(reports) > 0 && *retriesLeft > 0 {
		*retriesLeft--
		ui.Info("Asking the model to correct the failed edit (%d retries left)...", *retriesLeft)
		return true
	}
	return false
}

// previewAndCommit renders a colored diff for each staged change, asks once
// for the whole batch, and writes only on a yes. No-op changes are dropped
// from the preview.
func (a *App) previewAndCommit(staged []*edit.Change) (applied []*edit.Change, rejected bool) {
	var pending []*edit.Change
	for _, ch := range staged {
		rel, err := filepath.Rel(a.Applier.Root(), ch.AbsPath)
		if err != nil {
			rel = ch.Op.Path
		}
		unified, err := diff.Unified(rel, ch.Old, ch.New)
		if err != nil {
			ui.Error("Could not diff %s: %v", rel, err)
			continue
		}
		if unified == "" {
			ui.Info("No changes for %s (already up to date).", rel)
			continue
		}
		added, removed := diff.Stat(unified)
		title := fmt.Sprintf("%s  (+%d/-%d)", ch.Op.Describe(), added, removed)
		ui.PrintBoxed(title, diff.Render(unified), ui.HeaderColor)
		pending = append(pending, ch)
	}
	if len(pending) == 0 {
		return nil, false
	}

	if !a.Prompter.Confirm(fmt.Sprintf("Apply these changes to %d file(s)?", len(pending))) {
		ui.Warning("Changes discarded; nothing was written.")
		return nil, true
	}

	for _, ch := range pending {
		if err := a.Applier.Commit(ch); err != nil {
			ui.Error("Failed to write %s: %v", ch.Op.Path, err)
			a.Sess.AddSystemNote(fmt.Sprintf("Failed to write %s: %v", ch.Op.Path, err))
			continue
		}
		if ch.Created {
			a.WS.RecordCreated(ch.Op.Path)
			ui.Success("Created %s", ch.Op.Path)
		} else {
			a.WS.RecordModified(ch.Op.Path)
			ui.Success("Updated %s", ch.Op.Path)
		}
		applied = append(applied, ch)
	}
	return applied, false
}

// handleCommands confirms and runs each TERMINAL command, feeding the output
// back to the model. It returns true when at least one command produced a
// transcript the model should react to.
func (a *App) handleCommands(ctx context.Context, commands []string) bool {
	ran := false
	for _, command := range commands {
		if word, bad := shell.Dangerous(command); bad {
			ui.Warning("Refusing to run %q: %q requires running it yourself.", command, word)
			a.Sess.AddSystemNote(fmt.Sprintf("Command %q was blocked: %q is not allowed to run automatically.", command, word))
			ran = true
			continue
		}
		if !a.Prompter.Confirm(fmt.Sprintf("Run command: %s ?", command)) {
			a.Sess.AddSystemNote(fmt.Sprintf("User declined to run command: %s", command))
			ran = true
			continue
		}
		ui.Info("$ %s", command)
		res := shell.Run(ctx, command, a.Applier.Root(), shell.DefaultTimeout)
		if res.Stdout != "" {
			fmt.Print(res.Stdout)
		}
		if res.Stderr != "" {
			fmt.Print(res.Stderr)
		}
		if res.ExitCode == 0 {
			ui.Success("Command finished (%.1fs)", float64(res.DurationMs)/1000)
		} else {
			ui.Warning("Command exited with code %d", res.ExitCode)
		}
		a.Sess.AddSystemNote(res.Transcript())
		ran = true
	}
	return ran
}
