package diff

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines_OneLineEdit(t *testing.T) {
	changes := Lines("a\nb\nc", "a\nx\nc")
	require.NoError(t, validateLines("a\nb\nc", "a\nx\nc", changes))

	exp := []LineChange{
		{Type: Unchanged, OldText: "a", NewText: "a", LineNumber: 1},
		{Type: Removed, OldText: "b", LineNumber: 2},
		{Type: Added, NewText: "x", LineNumber: 2},
		{Type: Unchanged, OldText: "c", NewText: "c", LineNumber: 3},
	}
	assert.Equal(t, exp, changes)
	assert.Equal(t, Stats{Additions: 1, Deletions: 1}, CalculateStats(changes))
}

func TestLines_Positional(t *testing.T) {
	// Inserting one line at the top shifts everything: each following index is reported as removed+added.
	oldText := "one\ntwo\nthree"
	newText := "zero\none\ntwo\nthree"
	changes := Lines(oldText, newText)
	require.NoError(t, validateLines(oldText, newText, changes))

	exp := []LineChange{
		{Type: Removed, OldText: "one", LineNumber: 1},
		{Type: Added, NewText: "zero", LineNumber: 1},
		{Type: Removed, OldText: "two", LineNumber: 2},
		{Type: Added, NewText: "one", LineNumber: 2},
		{Type: Removed, OldText: "three", LineNumber: 3},
		{Type: Added, NewText: "two", LineNumber: 3},
		{Type: Added, NewText: "three", LineNumber: 4},
	}
	assert.Equal(t, exp, changes)
	assert.Equal(t, Stats{Additions: 4, Deletions: 3}, CalculateStats(changes))
}

func TestLines_UnevenLengths(t *testing.T) {
	changes := Lines("a\nb\nc\nd", "a")
	require.NoError(t, validateLines("a\nb\nc\nd", "a", changes))
	require.Len(t, changes, 4)
	assert.Equal(t, Unchanged, changes[0].Type)
	for i, c := range changes[1:] {
		assert.Equal(t, Removed, c.Type)
		assert.Equal(t, i+2, c.LineNumber)
	}
}

func TestLines_EscapedNewlines(t *testing.T) {
	// One side was JSON-escaped one time too many; both must still align.
	changes := Lines(`a\nb`, "a\nb")
	require.Len(t, changes, 2)
	assert.Equal(t, Unchanged, changes[0].Type)
	assert.Equal(t, Unchanged, changes[1].Type)
}

func TestLines_EmptyInputs(t *testing.T) {
	changes := Lines("", "")
	assert.Equal(t, []LineChange{{Type: Unchanged, LineNumber: 1}}, changes)

	changes = Lines("", "x")
	assert.Equal(t, []LineChange{
		{Type: Removed, OldText: "", LineNumber: 1},
		{Type: Added, NewText: "x", LineNumber: 1},
	}, changes)

	old, ok := changes[0].OldLine()
	assert.True(t, ok)
	assert.Equal(t, "", old)
	_, ok = changes[0].NewLine()
	assert.False(t, ok)
}

func TestLines_Idempotent(t *testing.T) {
	for _, s := range []string{"", "x", "a\nb\nc", "trailing\n", "\n\n\n", "tab\tline\r\nnext"} {
		changes := Lines(s, s)
		assert.Len(t, changes, len(strings.Split(s, "\n")), "input %q", s)
		for _, c := range changes {
			assert.Equal(t, Unchanged, c.Type, "input %q", s)
		}
	}
}

func TestLines_CountBoundAndStats(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", "b"},
		{"a\nb\nc", "a\nb"},
		{"x\ny", "y\nx\nz\nw"},
		{"same\nsame", "same\nsame\n"},
		{"héllo\nwörld", "hello\nwörld\n!"},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		changes := Lines(a, b)
		require.NoError(t, validateLines(a, b, changes))

		aLines := strings.Split(a, "\n")
		bLines := strings.Split(b, "\n")
		maxLines := max(len(aLines), len(bLines))
		assert.GreaterOrEqual(t, len(changes), maxLines)
		assert.LessOrEqual(t, len(changes), 2*maxLines)

		var wantAdd, wantDel int
		for i := 0; i < maxLines; i++ {
			if i < len(bLines) && (i >= len(aLines) || aLines[i] != bLines[i]) {
				wantAdd++
			}
			if i < len(aLines) && (i >= len(bLines) || aLines[i] != bLines[i]) {
				wantDel++
			}
		}
		assert.Equal(t, Stats{Additions: wantAdd, Deletions: wantDel}, CalculateStats(changes), "%q -> %q", a, b)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeNewlines(`a\nb`))
	assert.Equal(t, "a\nb\n", NormalizeNewlines("a\\nb\n"))
	assert.Equal(t, "no escapes", NormalizeNewlines("no escapes"))
	assert.Equal(t, `a\tb`, NormalizeNewlines(`a\tb`))
}

func TestCalculateStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, CalculateStats(nil))
}

func TestLineChange_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Lines("a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"change_type":"removed","old_line":"a","new_line":null,"line_number":1},
		{"change_type":"added","old_line":null,"new_line":"b","line_number":1}
	]`, string(b))
}

func TestChangeType_Text(t *testing.T) {
	for _, ct := range []ChangeType{Unchanged, Added, Removed} {
		b, err := ct.MarshalText()
		require.NoError(t, err)
		var back ChangeType
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, ct, back)
	}
	_, err := ChangeType(9).MarshalText()
	assert.Error(t, err)
	var ct ChangeType
	assert.Error(t, ct.UnmarshalText([]byte("moved")))
}
