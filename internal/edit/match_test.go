// Tests for inexact block matching diagnostics.
package edit

import (
	"strings"
	"testing"
)

func TestMatchBlockNoCandidate(t *testing.T) {
	report := matchBlock("alpha\nbeta\n", "gamma\ndelta")
	if report.Found {
		t.Fatalf("unexpected match: %+v", report)
	}
	if !strings.Contains(report.String(), "No matching block") {
		t.Errorf("report text = %q", report.String())
	}
}

func TestMatchBlockIgnoresTrailingWhitespace(t *testing.T) {
	file := "def f():\n    pass   \n"
	report := matchBlock(file, "def f():\n    pass")
	if !report.Found || report.Score != 2 {
		t.Fatalf("trailing whitespace should not break matching: %+v", report)
	}
}

func TestMatchBlockPartial(t *testing.T) {
	file := "a\nb\nc\nd\n"
	report := matchBlock(file, "b\nX\nd")
	if !report.Found {
		t.Fatalf("expected partial match: %+v", report)
	}
	if report.Line != 2 {
		t.Errorf("line = %d, want 2", report.Line)
	}
	if len(report.Mismatches) != 1 || report.Mismatches[0].FileContent != "c" {
		t.Errorf("mismatches = %+v", report.Mismatches)
	}
	if !strings.Contains(report.String(), "partial match") {
		t.Errorf("report text = %q", report.String())
	}
}
