// Package shell executes model-proposed terminal commands after the user
// confirms them.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a confirmed command when the caller gives none.
const DefaultTimeout = 60 * time.Second

// Result captures command execution metadata and output for both the user
// display and the transcript fed back to the model.
type Result struct {
	Command    string
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMs int64
	Err        string
}

// dangerousCommands are rejected outright, before the user is even prompted.
var dangerousCommands = map[string]struct{}{
	"rm":       {},
	"rmdir":    {},
	"dd":       {},
	"mkfs":     {},
	"fdisk":    {},
	"shutdown": {},
	"reboot":   {},
	"halt":     {},
	"poweroff": {},
	"sudo":     {},
	"su":       {},
	"chown":    {},
	"mkswap":   {},
}

// Dangerous reports whether a command's leading word is on the deny list.
// It inspects each segment of pipelines and command lists.
func Dangerous(command string) (string, bool) {
	for _, segment := range splitSegments(command) {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if slash := strings.LastIndex(name, "/"); slash >= 0 {
			name = name[slash+1:]
		}
		if _, bad := dangerousCommands[name]; bad {
			return name, true
		}
	}
	return "", false
}

// splitSegments breaks a shell command on pipes, && and ; separators.
func splitSegments(command string) []string {
	replaced := command
	for _, sep := range []string{"&&", "||", "|", ";"} {
		replaced = strings.ReplaceAll(replaced, sep, "\x00")
	}
	return strings.Split(replaced, "\x00")
}

// Run executes command via bash with a sanitized environment, capturing
// stdout, stderr, and the exit code. It never returns an error: failures are
// reported inside the Result so they can be shown and fed back to the model.
func Run(ctx context.Context, command, dir string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Env = sanitizedEnv()
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Command:    command,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Err = err.Error()
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			res.ExitCode = -1
			res.Err = fmt.Sprintf("timed out after %s", timeout)
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = -1
		}
	}
	return res
}

// Transcript formats the result for the conversation history so the model can
// reason about the command outcome.
func (r Result) Transcript() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Command: %s\n", r.Command)
	if out := strings.TrimSpace(r.Stdout); out != "" {
		sb.WriteString("--- STDOUT ---\n")
		sb.WriteString(out)
		sb.WriteString("\n--------------\n")
	}
	if errs := strings.TrimSpace(r.Stderr); errs != "" {
		sb.WriteString("--- STDERR ---\n")
		sb.WriteString(errs)
		sb.WriteString("\n--------------\n")
	}
	if r.ExitCode == 0 {
		sb.WriteString("Exit Code: 0 (Success)")
	} else {
		fmt.Fprintf(&sb, "Exit Code: %d (Error)", r.ExitCode)
		if r.Err != "" {
			fmt.Fprintf(&sb, "\nError: %s", r.Err)
		}
	}
	return sb.String()
}

// sanitizedEnv keeps only low-risk environment variables for subprocesses,
// notably excluding the API keys.
func sanitizedEnv() []string {
	allowedPrefixes := []string{
		"PATH=",
		"HOME=",
		"USER=",
		"LOGNAME=",
		"SHELL=",
		"TMPDIR=",
		"TMP=",
		"TEMP=",
		"LANG=",
		"LC_",
		"TERM=",
		"PWD=",
	}

	env := make([]string, 0, len(allowedPrefixes))
	for _, kv := range os.Environ() {
		for _, prefix := range allowedPrefixes {
			if strings.HasPrefix(kv, prefix) {
				env = append(env, kv)
				break
			}
		}
	}
	return env
}
