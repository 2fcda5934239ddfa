// Tests for request message assembly.
package llm

import (
	"testing"

	"codagent/internal/session"
)

func TestBuildMessagesPrefixesSystemPrompt(t *testing.T) {
	history := []session.Message{
		{Role: session.RoleUser, Content: "hello"},
		{Role: session.RoleAssistant, Content: "hi"},
		{Role: session.RoleSystem, Content: "apply results"},
	}
	got := buildMessages("instructions", history)
	if len(got) != 4 {
		t.Fatalf("messages = %d, want 4", len(got))
	}
	if got[0].OfSystem == nil {
		t.Error("first message must be the system prompt")
	}
	if got[1].OfUser == nil {
		t.Error("second message must be the user turn")
	}
	if got[2].OfAssistant == nil {
		t.Error("third message must be the assistant turn")
	}
	if got[3].OfSystem == nil {
		t.Error("session notes are sent as system messages")
	}
}
