package edit

import (
	"fmt"
	"strings"
)

// Mismatch records one line that differed between the file and the block the
// model claimed to be replacing.
type Mismatch struct {
	FileLine     int // 1-based line number in the file
	FileContent  string
	BlockLine    int // 1-based line number in the old block
	BlockContent string
}

// MatchReport describes how close the model's old block came to the file
// content when an exact match failed. It is fed back to the model so it can
// correct the block on retry.
type MatchReport struct {
	Found      bool // a partial match above the threshold was located
	Line       int  // 1-based start line of the best candidate
	Score      int  // matching lines within the candidate
	Total      int  // lines in the old block
	Mismatches []Mismatch
}

// String renders the report as retry guidance for the model.
func (r *MatchReport) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if !r.Found {
		sb.WriteString("No matching block was found in the file. Re-read the file content and reproduce the old block exactly, including whitespace.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Found a partial match (%d/%d lines) starting at line %d. These lines differ:\n", r.Score, r.Total, r.Line)
	for _, m := range r.Mismatches {
		fmt.Fprintf(&sb, "  file line %d:  %q\n", m.FileLine, m.FileContent)
		fmt.Fprintf(&sb, "  your line %d:  %q\n", m.BlockLine, m.BlockContent)
	}
	sb.WriteString("Whitespace and indentation must match exactly.")
	return sb.String()
}

// matchBlock searches fileContent for the closest occurrence of oldBlock.
// Candidates are anchored on the first block line; lines are compared with
// trailing whitespace stripped. A candidate matching more than half of the
// block lines counts as found.
func matchBlock(fileContent, oldBlock string) *MatchReport {
	blockLines := strings.Split(oldBlock, "\n")
	fileLines := strings.Split(fileContent, "\n")

	report := &MatchReport{Total: len(blockLines)}
	if len(blockLines) == 0 || len(fileLines) < len(blockLines) {
		return report
	}

	first := strings.TrimRight(blockLines[0], " \t")
	for start := 0; start <= len(fileLines)-len(blockLines); start++ {
		if strings.TrimRight(fileLines[start], " \t") != first {
			continue
		}
		score := 0
		var mismatches []Mismatch
		for j := range blockLines {
			if strings.TrimRight(fileLines[start+j], " \t") == strings.TrimRight(blockLines[j], " \t") {
				score++
				continue
			}
			mismatches = append(mismatches, Mismatch{
				FileLine:     start + j + 1,
				FileContent:  fileLines[start+j],
				BlockLine:    j + 1,
				BlockContent: blockLines[j],
			})
		}
		if score > report.Score {
			report.Score = score
			report.Line = start + 1
			report.Mismatches = mismatches
		}
	}

	report.Found = report.Score > len(blockLines)/2
	return report
}
