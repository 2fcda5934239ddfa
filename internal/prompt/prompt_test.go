// Tests for system prompt assembly.
package prompt

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptNamesEveryTag(t *testing.T) {
	got := BuildSystemPrompt("/tmp/work", "main.go\nutil.go")

	for _, tag := range []string{
		"====== CREATE", "====== CEND",
		"======= REPLACE", "======= TO", "======= REND",
		"====== TERMINAL", "====== TEND",
		"====== ASK_FOR_FILES", "====== AEND",
		"====== ASK_TO_USER", "====== QEND",
		"[END]",
	} {
		if !strings.Contains(got, tag) {
			t.Errorf("prompt missing tag %q", tag)
		}
	}
	if !strings.Contains(got, "/tmp/work") {
		t.Error("prompt missing working directory")
	}
	if !strings.Contains(got, "util.go") {
		t.Error("prompt missing directory tree")
	}
}

func TestBuildSystemPromptWithoutTree(t *testing.T) {
	got := BuildSystemPrompt("/tmp/work", "")
	if strings.Contains(got, "Directory structure") {
		t.Error("empty tree should omit the structure section")
	}
}
