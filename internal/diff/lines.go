package diff

import "strings"

// NormalizeNewlines replaces every literal backslash-n sequence in s with a real newline.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, escapedEOL) {
		return s
	}
	return strings.ReplaceAll(s, escapedEOL, defaultEOL)
}

// splitLines normalizes text and splits it on defaultEOL. Empty text is one empty line.
func splitLines(text string) []string {
	return strings.Split(NormalizeNewlines(text), defaultEOL)
}

// Lines diffs oldText to newText line by line, comparing lines at the same index.
//
// For each index i up to the longer line count: equal lines yield one Unchanged change; otherwise the old line (if any) yields a Removed change followed by
// the new line (if any) as an Added change. All changes at index i have LineNumber i+1. The result therefore has between max(len(old), len(new)) and twice that
// many entries.
func Lines(oldText, newText string) []LineChange {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	maxLines := len(oldLines)
	if len(newLines) > maxLines {
		maxLines = len(newLines)
	}

	changes := make([]LineChange, 0, maxLines)
	for i := 0; i < maxLines; i++ {
		hasOld := i < len(oldLines)
		hasNew := i < len(newLines)

		if hasOld && hasNew && oldLines[i] == newLines[i] {
			changes = append(changes, LineChange{Type: Unchanged, OldText: oldLines[i], NewText: newLines[i], LineNumber: i + 1})
			continue
		}
		if hasOld {
			changes = append(changes, LineChange{Type: Removed, OldText: oldLines[i], LineNumber: i + 1})
		}
		if hasNew {
			changes = append(changes, LineChange{Type: Added, NewText: newLines[i], LineNumber: i + 1})
		}
	}
	return changes
}

// CalculateStats counts the Added and Removed entries in changes.
func CalculateStats(changes []LineChange) Stats {
	var s Stats
	for _, c := range changes {
		switch c.Type {
		case Added:
			s.Additions++
		case Removed:
			s.Deletions++
		}
	}
	return s
}
