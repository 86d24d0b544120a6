package diff

import (
	"fmt"
	"strings"
)

// validateLines checks the LineChange invariants of changes against the texts they were produced from, returning an error on the first violation.
func validateLines(oldText, newText string, changes []LineChange) error {
	var oldLines, newLines []string
	lastNumber := 0
	for i, c := range changes {
		if c.LineNumber < 1 {
			return fmt.Errorf("change[%d]: LineNumber must be >= 1 (got %d)", i, c.LineNumber)
		}
		if c.LineNumber < lastNumber {
			return fmt.Errorf("change[%d]: LineNumber %d decreases from %d", i, c.LineNumber, lastNumber)
		}
		lastNumber = c.LineNumber

		switch c.Type {
		case Unchanged:
			if c.OldText != c.NewText {
				return fmt.Errorf("change[%d]: Unchanged requires OldText==NewText", i)
			}
			oldLines = append(oldLines, c.OldText)
			newLines = append(newLines, c.NewText)
		case Removed:
			if c.NewText != "" {
				return fmt.Errorf("change[%d]: Removed requires NewText==\"\"", i)
			}
			oldLines = append(oldLines, c.OldText)
		case Added:
			if c.OldText != "" {
				return fmt.Errorf("change[%d]: Added requires OldText==\"\"", i)
			}
			newLines = append(newLines, c.NewText)
		default:
			return fmt.Errorf("change[%d]: unknown type %v", i, c.Type)
		}
	}

	if strings.Join(oldLines, defaultEOL) != NormalizeNewlines(oldText) {
		return fmt.Errorf("lines: changes do not reconstruct old text")
	}
	if strings.Join(newLines, defaultEOL) != NormalizeNewlines(newText) {
		return fmt.Errorf("lines: changes do not reconstruct new text")
	}
	return nil
}

// validateChars checks that segments reconstruct both texts and are shaped as prefix, removed, added, suffix.
func validateChars(oldText, newText string, segments []CharSegment) error {
	if len(segments) > 4 {
		return fmt.Errorf("chars: at most 4 segments allowed (got %d)", len(segments))
	}

	var oldConcat, newConcat strings.Builder
	for i, s := range segments {
		if s.Text == "" {
			return fmt.Errorf("segment[%d]: empty text", i)
		}
		switch s.Type {
		case Unchanged:
			oldConcat.WriteString(s.Text)
			newConcat.WriteString(s.Text)
		case Removed:
			oldConcat.WriteString(s.Text)
		case Added:
			newConcat.WriteString(s.Text)
		default:
			return fmt.Errorf("segment[%d]: unknown type %v", i, s.Type)
		}
		if i > 0 && segments[i-1].Type == s.Type {
			return fmt.Errorf("segment[%d]: adjacent segments share type %v", i, s.Type)
		}
	}

	if oldConcat.String() != NormalizeNewlines(oldText) {
		return fmt.Errorf("chars: segments do not reconstruct old text")
	}
	if newConcat.String() != NormalizeNewlines(newText) {
		return fmt.Errorf("chars: segments do not reconstruct new text")
	}
	return nil
}
