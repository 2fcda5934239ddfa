// Package session holds the conversation history for one process lifetime
// and supports saving transcripts.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles used in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation entry.
type Message struct {
	Role    string
	Content string
	Time    time.Time
}

// Session is the ordered sequence of conversation messages. It lives only
// for the process lifetime unless the user saves a transcript.
type Session struct {
	id        string
	startedAt time.Time
	limit     int
	msgs      []Message
}

// New returns an empty session. limit caps the window returned by Messages;
// zero or negative means unlimited.
func New(limit int) *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		limit:     limit,
	}
}

// ID returns the session identifier used for transcript filenames.
func (s *Session) ID() string { return s.id }

// Len returns the number of stored messages.
func (s *Session) Len() int { return len(s.msgs) }

func (s *Session) add(role, content string) {
	s.msgs = append(s.msgs, Message{Role: role, Content: content, Time: time.Now()})
}

// AddUser appends a user message.
func (s *Session) AddUser(content string) { s.add(RoleUser, content) }

// AddAssistant appends an assistant message.
func (s *Session) AddAssistant(content string) { s.add(RoleAssistant, content) }

// AddSystemNote appends a system-side note (apply results, command output).
func (s *Session) AddSystemNote(content string) { s.add(RoleSystem, content) }

// DropLast removes the most recent message. The REPL uses it to unwind a
// user message after a failed API call so history stays consistent.
func (s *Session) DropLast() {
	if len(s.msgs) > 0 {
		s.msgs = s.msgs[:len(s.msgs)-1]
	}
}

// Clear discards all messages.
func (s *Session) Clear() { s.msgs = nil }

// Messages returns the trailing window of at most limit messages.
func (s *Session) Messages() []Message {
	if s.limit <= 0 || len(s.msgs) <= s.limit {
		return s.msgs
	}
	return s.msgs[len(s.msgs)-s.limit:]
}

// All returns every message regardless of the window, for transcripts.
func (s *Session) All() []Message { return s.msgs }

// SaveTranscript writes the full conversation as markdown into dir and
// returns the file path.
func (s *Session) SaveTranscript(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("codagent-%s.md", s.id))

	var sb strings.Builder
	fmt.Fprintf(&sb, "# CodAgent session %s\n\nStarted: %s\n", s.id, s.startedAt.Format(time.RFC3339))
	for _, m := range s.msgs {
		fmt.Fprintf(&sb, "\n## %s (%s)\n\n%s\n", m.Role, m.Time.Format("15:04:05"), m.Content)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// HistoryFilePath returns the REPL input-history file for a workspace.
func HistoryFilePath(root string) string {
	return filepath.Join(root, ".codagent_history")
}
