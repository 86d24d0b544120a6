package diff

import (
	"encoding/json"
	"fmt"
)

// ChangeType is how a line or segment differs between old and new text.
type ChangeType int

// Change types, from old text to new text.
const (
	Unchanged ChangeType = iota
	Added
	Removed
)

func (t ChangeType) String() string {
	switch t {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// MarshalText encodes t as its lowercase name ("unchanged", "added", "removed").
func (t ChangeType) MarshalText() ([]byte, error) {
	switch t {
	case Unchanged, Added, Removed:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("diff: unknown change type %d", int(t))
	}
}

// UnmarshalText is the inverse of MarshalText.
func (t *ChangeType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unchanged":
		*t = Unchanged
	case "added":
		*t = Added
	case "removed":
		*t = Removed
	default:
		return fmt.Errorf("diff: unknown change type %q", string(b))
	}
	return nil
}

// LineChange is one row of a positional line diff.
//
// Which sides exist follows Type:
//   - Unchanged: OldText == NewText, both present
//   - Removed: OldText is the old line; NewText is "" and absent
//   - Added: NewText is the new line; OldText is "" and absent
//
// Use OldLine/NewLine to tell an absent side from an empty line.
type LineChange struct {
	Type       ChangeType
	OldText    string // Old line without its '\n'.
	NewText    string // New line without its '\n'.
	LineNumber int    // 1-based index into the longer input at which this row was produced.
}

// OldLine returns the old side of c and whether it exists.
func (c LineChange) OldLine() (string, bool) {
	if c.Type == Added {
		return "", false
	}
	return c.OldText, true
}

// NewLine returns the new side of c and whether it exists.
func (c LineChange) NewLine() (string, bool) {
	if c.Type == Removed {
		return "", false
	}
	return c.NewText, true
}

type lineChangeJSON struct {
	Type       ChangeType `json:"change_type"`
	OldLine    *string    `json:"old_line"`
	NewLine    *string    `json:"new_line"`
	LineNumber int        `json:"line_number"`
}

// MarshalJSON encodes an absent side as null.
func (c LineChange) MarshalJSON() ([]byte, error) {
	out := lineChangeJSON{Type: c.Type, LineNumber: c.LineNumber}
	if s, ok := c.OldLine(); ok {
		out.OldLine = &s
	}
	if s, ok := c.NewLine(); ok {
		out.NewLine = &s
	}
	return json.Marshal(out)
}

// CharSegment is one contiguous run of a character-level diff.
type CharSegment struct {
	Type ChangeType `json:"change_type"`
	Text string     `json:"text"`
}

// Stats summarizes a line diff.
type Stats struct {
	Additions int `json:"additions"` // Count of Added line changes.
	Deletions int `json:"deletions"` // Count of Removed line changes.
}

// defaultEOL is the line separator ('\n').
//
// This constant exists because the design may change to allow configurable EOLs (maybe Windows needs "\r\n"), and this provides a nice hook to find callsites.
const defaultEOL = "\n"

// escapedEOL is a literal backslash followed by 'n', as found in text that was escaped once too often.
const escapedEOL = `\n`
