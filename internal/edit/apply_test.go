// Tests for staging and committing file-change proposals.
package edit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestApplier(t *testing.T) (*Applier, string) {
	t.Helper()
	dir := t.TempDir()
	a, err := NewApplier(dir)
	if err != nil {
		t.Fatalf("NewApplier: %v", err)
	}
	return a, dir
}

func TestStageCreateDoesNotWrite(t *testing.T) {
	a, dir := newTestApplier(t)

	ch, err := a.Stage(Op{Kind: KindCreate, Path: "sub/dir/hello.txt", Content: "hello"})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !ch.Created {
		t.Error("expected Created for a new file")
	}
	if ch.New != "hello\n" {
		t.Errorf("staged content = %q, want trailing newline added", ch.New)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub")); !os.IsNotExist(err) {
		t.Fatal("Stage must not create directories; only Commit writes")
	}
}

func TestCommitCreatesParents(t *testing.T) {
	a, dir := newTestApplier(t)

	ch, err := a.Stage(Op{Kind: KindCreate, Path: "a/b/c.txt", Content: "x"})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := a.Commit(ch); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	if err != nil {
		t.Fatalf("read committed file: %v", err)
	}
	if string(data) != "x\n" {
		t.Fatalf("committed content = %q", data)
	}
}

func TestStageRejectsTraversal(t *testing.T) {
	a, _ := newTestApplier(t)

	for _, path := range []string{"../escape.txt", "a/../../escape.txt", ".."} {
		if _, err := a.Stage(Op{Kind: KindCreate, Path: path, Content: "x"}); err == nil {
			t.Errorf("Stage(%q) should reject traversal", path)
		}
	}
}

func TestStageReplaceBlockExact(t *testing.T) {
	a, dir := newTestApplier(t)
	target := filepath.Join(dir, "main.go")
	original := "func main() {\n\tfmt.Println(\"old\")\n}\n"
	if err := os.WriteFile(target, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, err := a.Stage(Op{
		Kind:     KindReplaceBlock,
		Path:     "main.go",
		OldBlock: "\tfmt.Println(\"old\")",
		NewBlock: "\tfmt.Println(\"new\")",
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !strings.Contains(ch.New, "new") || strings.Contains(ch.New, "old") {
		t.Fatalf("staged content = %q", ch.New)
	}

	// Nothing on disk until Commit.
	data, _ := os.ReadFile(target)
	if string(data) != original {
		t.Fatal("Stage modified the file before confirmation")
	}
}

func TestStageReplaceBlockMismatchReportsDiagnostics(t *testing.T) {
	a, dir := newTestApplier(t)
	target := filepath.Join(dir, "f.py")
	original := "def run():\n    x = 1\n    return x\n"
	if err := os.WriteFile(target, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, err := a.Stage(Op{
		Kind:     KindReplaceBlock,
		Path:     "f.py",
		OldBlock: "def run():\n    x = 2\n    return x",
		NewBlock: "def run():\n    x = 3\n    return x",
	})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if ch == nil || ch.Report == nil {
		t.Fatal("expected a match report on mismatch")
	}
	if !ch.Report.Found {
		t.Errorf("report should locate the partial match: %+v", ch.Report)
	}
	if ch.Report.Line != 1 || ch.Report.Score != 2 {
		t.Errorf("report = %+v, want line 1 score 2", ch.Report)
	}
	if len(ch.Report.Mismatches) != 1 {
		t.Fatalf("mismatches = %d, want 1", len(ch.Report.Mismatches))
	}
	if ch.Report.Mismatches[0].FileLine != 2 {
		t.Errorf("mismatch file line = %d, want 2", ch.Report.Mismatches[0].FileLine)
	}
}

func TestStageReplaceBlockMissingFile(t *testing.T) {
	a, _ := newTestApplier(t)
	_, err := a.Stage(Op{Kind: KindReplaceBlock, Path: "nope.txt", OldBlock: "a", NewBlock: "b"})
	if err == nil {
		t.Fatal("expected error replacing in a missing file")
	}
}

func TestApplyLineEdits(t *testing.T) {
	content := "one\ntwo\nthree\n"

	cases := []struct {
		name  string
		edits []LineEdit
		want  string
	}{
		{
			name:  "replace",
			edits: []LineEdit{{Op: LineReplace, Line: 2, Content: "TWO"}},
			want:  "one\nTWO\nthree\n",
		},
		{
			name:  "delete",
			edits: []LineEdit{{Op: LineDelete, Line: 2}},
			want:  "one\nthree\n",
		},
		{
			name:  "insert after",
			edits: []LineEdit{{Op: LineInsertAfter, Line: 1, Content: "one and a half"}},
			want:  "one\none and a half\ntwo\nthree\n",
		},
		{
			name:  "insert at top",
			edits: []LineEdit{{Op: LineInsertAfter, Line: 0, Content: "zero"}},
			want:  "zero\none\ntwo\nthree\n",
		},
		{
			name:  "append via replace past end",
			edits: []LineEdit{{Op: LineReplace, Line: 4, Content: "four"}},
			want:  "one\ntwo\nthree\nfour\n",
		},
		{
			name: "combined against original numbering",
			edits: []LineEdit{
				{Op: LineDelete, Line: 1},
				{Op: LineReplace, Line: 3, Content: "THREE"},
			},
			want: "two\nTHREE\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := applyLineEdits(content, tc.edits)
			if err != nil {
				t.Fatalf("applyLineEdits: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestApplyLineEditsOutOfRange(t *testing.T) {
	if _, err := applyLineEdits("one\n", []LineEdit{{Op: LineDelete, Line: 5}}); err == nil {
		t.Fatal("expected out of range error")
	}
	if _, err := applyLineEdits("one\n", []LineEdit{{Op: LineReplace, Line: 0, Content: "x"}}); err == nil {
		t.Fatal("expected out of range error for line 0")
	}
}

func TestCommitNoopKeepsBytes(t *testing.T) {
	a, dir := newTestApplier(t)
	target := filepath.Join(dir, "same.txt")
	content := "unchanged\n"
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, err := a.Stage(Op{Kind: KindCreate, Path: "same.txt", Content: "unchanged"})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if ch.Old != ch.New {
		t.Fatalf("expected no-op staging, old=%q new=%q", ch.Old, ch.New)
	}
	if err := a.Commit(ch); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != content {
		t.Fatal("no-op apply changed file bytes")
	}
}
