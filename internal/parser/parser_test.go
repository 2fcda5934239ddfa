// Tests for tag extraction from model replies.
package parser

import (
	"strings"
	"testing"

	"codagent/internal/edit"
)

func TestParsePlainProse(t *testing.T) {
	resp := Parse("Just an explanation, nothing to do.")
	if resp.HasActions() {
		t.Fatalf("unexpected actions: %+v", resp)
	}
	if resp.Done {
		t.Error("no [END] marker was present")
	}
	if resp.Text != "Just an explanation, nothing to do." {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestParseEndMarker(t *testing.T) {
	resp := Parse("All done here.\n[END]")
	if !resp.Done {
		t.Fatal("missed [END] marker")
	}
	if resp.Text != "All done here." {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestParseCreate(t *testing.T) {
	raw := "I'll create the file.\n\n" +
		"====== CREATE hello.py\n" +
		"print(\"hi\")\n" +
		"====== CEND\n\nDone."
	resp := Parse(raw)
	if len(resp.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(resp.Ops))
	}
	op := resp.Ops[0]
	if op.Kind != edit.KindCreate || op.Path != "hello.py" {
		t.Fatalf("op = %+v", op)
	}
	if op.Content != "print(\"hi\")" {
		t.Errorf("content = %q", op.Content)
	}
	if strings.Contains(resp.Text, "CREATE") {
		t.Errorf("tag left in prose: %q", resp.Text)
	}
}

func TestParseCreateStripsFences(t *testing.T) {
	raw := "====== CREATE app.js\n" +
		"```js\n" +
		"console.log(1)\n" +
		"```\n" +
		"====== CEND"
	resp := Parse(raw)
	if len(resp.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(resp.Ops))
	}
	if resp.Ops[0].Content != "console.log(1)" {
		t.Errorf("content = %q", resp.Ops[0].Content)
	}
}

func TestParseCreateEmptyContentSkipped(t *testing.T) {
	resp := Parse("====== CREATE empty.txt\n```\n```\n====== CEND")
	if len(resp.Ops) != 0 {
		t.Fatalf("empty create should be dropped, got %+v", resp.Ops)
	}
}

func TestParseBlockReplace(t *testing.T) {
	raw := "======= REPLACE main.go\n" +
		"\tfmt.Println(\"old\")\n" +
		"======= TO\n" +
		"\tfmt.Println(\"new\")\n" +
		"======= REND"
	resp := Parse(raw)
	if len(resp.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(resp.Ops))
	}
	op := resp.Ops[0]
	if op.Kind != edit.KindReplaceBlock {
		t.Fatalf("kind = %v", op.Kind)
	}
	if op.OldBlock != "\tfmt.Println(\"old\")" || op.NewBlock != "\tfmt.Println(\"new\")" {
		t.Errorf("blocks = %q -> %q", op.OldBlock, op.NewBlock)
	}
}

func TestParseLineReplace(t *testing.T) {
	raw := "====== REPLACE config.ini\n" +
		"+2 | timeout = 30\n" +
		"-3 |\n" +
		"~4 | retries = 5\n" +
		"====== REND"
	resp := Parse(raw)
	if len(resp.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(resp.Ops))
	}
	op := resp.Ops[0]
	if op.Kind != edit.KindReplaceLines || len(op.Lines) != 3 {
		t.Fatalf("op = %+v", op)
	}
	if op.Lines[0] != (edit.LineEdit{Op: edit.LineReplace, Line: 2, Content: "timeout = 30"}) {
		t.Errorf("first edit = %+v", op.Lines[0])
	}
	if op.Lines[1] != (edit.LineEdit{Op: edit.LineDelete, Line: 3, Content: ""}) {
		t.Errorf("second edit = %+v", op.Lines[1])
	}
	if op.Lines[2] != (edit.LineEdit{Op: edit.LineInsertAfter, Line: 4, Content: "retries = 5"}) {
		t.Errorf("third edit = %+v", op.Lines[2])
	}
}

func TestParseLineReplaceOrdersEditsByLine(t *testing.T) {
	raw := "====== REPLACE config.ini\n" +
		"~9 | retries = 5\n" +
		"+2 | timeout = 30\n" +
		"-5 |\n" +
		"====== REND"
	resp := Parse(raw)
	if len(resp.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(resp.Ops))
	}
	lines := resp.Ops[0].Lines
	if len(lines) != 3 {
		t.Fatalf("edits = %d, want 3", len(lines))
	}
	for i, want := range []int{2, 5, 9} {
		if lines[i].Line != want {
			t.Errorf("edit %d on line %d, want %d", i, lines[i].Line, want)
		}
	}
}

func TestParseBlockAndLineReplaceTogether(t *testing.T) {
	raw := "======= REPLACE a.txt\nold\n======= TO\nnew\n======= REND\n\n" +
		"====== REPLACE b.txt\n+1 | first\n====== REND"
	resp := Parse(raw)
	if len(resp.Ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(resp.Ops))
	}
	if resp.Ops[0].Kind != edit.KindReplaceBlock || resp.Ops[1].Kind != edit.KindReplaceLines {
		t.Fatalf("kinds = %v, %v", resp.Ops[0].Kind, resp.Ops[1].Kind)
	}
}

func TestParseTerminal(t *testing.T) {
	raw := "Let me check the tests.\n" +
		"====== TERMINAL\n" +
		"go test ./...\n" +
		"====== TEND"
	resp := Parse(raw)
	if len(resp.Commands) != 1 || resp.Commands[0] != "go test ./..." {
		t.Fatalf("commands = %+v", resp.Commands)
	}
}

func TestParseAskForFiles(t *testing.T) {
	raw := "====== ASK_FOR_FILES\n" +
		"cmd/main.go\n" +
		"internal/app/app.go\n" +
		"====== AEND"
	resp := Parse(raw)
	if len(resp.FileRequests) != 2 {
		t.Fatalf("requests = %+v", resp.FileRequests)
	}
	if resp.FileRequests[1] != "internal/app/app.go" {
		t.Errorf("second request = %q", resp.FileRequests[1])
	}
}

func TestParseAskToUserNormal(t *testing.T) {
	resp := Parse("====== ASK_TO_USER format:normal\nWhat should the file be called?\n====== QEND")
	if resp.Question == nil {
		t.Fatal("missing question")
	}
	if resp.Question.Format != "normal" || resp.Question.Text != "What should the file be called?" {
		t.Errorf("question = %+v", resp.Question)
	}
}

func TestParseAskToUserOptions(t *testing.T) {
	resp := Parse("====== ASK_TO_USER format:options\nCLI Task Manager\nWeather Fetcher\n# a comment\nSimple Chatbot\n====== QEND")
	if resp.Question == nil || resp.Question.Format != "options" {
		t.Fatalf("question = %+v", resp.Question)
	}
	want := []string{"CLI Task Manager", "Weather Fetcher", "Simple Chatbot"}
	if len(resp.Question.Options) != len(want) {
		t.Fatalf("options = %+v", resp.Question.Options)
	}
	for i, opt := range want {
		if resp.Question.Options[i] != opt {
			t.Errorf("option %d = %q, want %q", i, resp.Question.Options[i], opt)
		}
	}
}

func TestParseAskToUserUnknownFormatDefaultsToNormal(t *testing.T) {
	resp := Parse("====== ASK_TO_USER format:fancy\nContinue?\n====== QEND")
	if resp.Question == nil || resp.Question.Format != "normal" {
		t.Fatalf("question = %+v", resp.Question)
	}
}

func TestParseMixedReply(t *testing.T) {
	raw := "Plan: create the script, then run it.\n\n" +
		"====== CREATE run.sh\n#!/bin/sh\necho ok\n====== CEND\n\n" +
		"====== TERMINAL\nsh run.sh\n====== TEND\n\n" +
		"[END]"
	resp := Parse(raw)
	if len(resp.Ops) != 1 || len(resp.Commands) != 1 || !resp.Done {
		t.Fatalf("resp = %+v", resp)
	}
	if !strings.Contains(resp.Text, "Plan:") {
		t.Errorf("prose lost: %q", resp.Text)
	}
	if strings.Contains(resp.Text, "======") {
		t.Errorf("tags left in prose: %q", resp.Text)
	}
}
