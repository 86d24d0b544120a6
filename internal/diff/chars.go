package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// Chars diffs oldText to newText by trimming their common prefix and suffix.
//
// The common suffix is only searched for after the common prefix on both sides, so the two never overlap. The result is, in order and each only if non-empty:
// the unchanged prefix, the removed middle of oldText, the added middle of newText, and the unchanged suffix. Multiple disjoint edits collapse into one
// removed/added pair spanning all of them.
//
// Comparison is per rune, so multi-byte characters are never split. Invalid UTF-8 bytes become U+FFFD, so for such input the segments reassemble
// the repaired text rather than the original bytes.
func Chars(oldText, newText string) []CharSegment {
	oldRunes := []rune(NormalizeNewlines(oldText))
	newRunes := []rune(NormalizeNewlines(newText))

	dmp := diffmatchpatch.New()
	prefixLen := dmp.DiffCommonPrefix(string(oldRunes), string(newRunes))
	suffixLen := dmp.DiffCommonSuffix(string(oldRunes[prefixLen:]), string(newRunes[prefixLen:]))

	oldEnd := len(oldRunes) - suffixLen
	newEnd := len(newRunes) - suffixLen

	var segments []CharSegment
	add := func(t ChangeType, rs []rune) {
		if len(rs) == 0 {
			return
		}
		segments = append(segments, CharSegment{Type: t, Text: string(rs)})
	}
	add(Unchanged, oldRunes[:prefixLen])
	add(Removed, oldRunes[prefixLen:oldEnd])
	add(Added, newRunes[prefixLen:newEnd])
	add(Unchanged, oldRunes[oldEnd:])
	return segments
}
