// Package diff computes and renders the before/after view of a text-replacement edit.
//
// Representation: Lines returns a positional, line-level edit script. Each LineChange has a ChangeType:
//   - Unchanged: the old and new line at the same index are identical (OldText == NewText)
//   - Removed: a line that exists on the old side at that index (NewText is unused)
//   - Added: a line that exists on the new side at that index (OldText is unused)
//
// Chars returns a condensed character-level edit script of at most four segments: an unchanged common prefix, the removed middle of the old text, the added
// middle of the new text, and an unchanged common suffix.
//
// Invariants:
//   - concat(Unchanged+Removed LineChange.OldText, joined by "\n") == NormalizeNewlines(old)
//   - concat(Unchanged+Added LineChange.NewText, joined by "\n") == NormalizeNewlines(new)
//   - concat(Unchanged+Removed CharSegment.Text) == NormalizeNewlines(old)
//   - concat(Unchanged+Added CharSegment.Text) == NormalizeNewlines(new)
//
// Positional alignment: Lines compares line i of the old text with line i of the new text. It does not look for insertions or deletions that shift later
// lines, so inserting a single line near the top reports every following line as removed and added at the same index. LineNumber is that index (1-based),
// which renderers show in the gutter. Callers rely on this numbering; do not replace it with a minimal edit script.
//
// Newlines: both sides go through NormalizeNewlines first, which turns a literal backslash-n (as left behind by JSON or other escaping) into '\n'. '\n'
// is the only line separator; a trailing "\r" stays part of its line.
//
// Rendering: RenderPretty emits a gutter of line numbers with "+"/"-"/" " markers, collapses long unchanged runs, and optionally colorizes. RenderChars
// renders a char-level script inline.
package diff
