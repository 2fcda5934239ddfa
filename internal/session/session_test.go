// Tests for conversation history management.
package session

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestMessagesWindow(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.AddUser(fmt.Sprintf("message %d", i))
	}
	got := s.Messages()
	if len(got) != 3 {
		t.Fatalf("window = %d messages, want 3", len(got))
	}
	if got[0].Content != "message 2" {
		t.Errorf("window starts at %q, want message 2", got[0].Content)
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d, want 5 (window must not discard)", s.Len())
	}
}

func TestMessagesUnlimited(t *testing.T) {
	s := New(0)
	for i := 0; i < 10; i++ {
		s.AddAssistant("x")
	}
	if len(s.Messages()) != 10 {
		t.Fatalf("unlimited session trimmed messages")
	}
}

func TestDropLast(t *testing.T) {
	s := New(0)
	s.AddUser("keep")
	s.AddUser("drop")
	s.DropLast()
	if s.Len() != 1 || s.Messages()[0].Content != "keep" {
		t.Fatalf("messages = %+v", s.Messages())
	}

	s.Clear()
	s.DropLast() // must not panic on empty history
	if s.Len() != 0 {
		t.Fatal("Clear left messages behind")
	}
}

func TestSaveTranscript(t *testing.T) {
	s := New(0)
	s.AddUser("write a haiku")
	s.AddAssistant("files fall like leaves")

	dir := t.TempDir()
	path, err := s.SaveTranscript(dir)
	if err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if !strings.Contains(path, s.ID()) {
		t.Errorf("transcript path %q missing session id", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if !strings.Contains(body, "write a haiku") || !strings.Contains(body, "files fall like leaves") {
		t.Errorf("transcript missing messages:\n%s", body)
	}
}

func TestUniqueIDs(t *testing.T) {
	if New(0).ID() == New(0).ID() {
		t.Fatal("session ids must be unique")
	}
}
