// Package toolview turns a text-replacement tool call (the assistant's call plus, once it exists, the tool's result) into something a person can read: a
// display state, a message, and a rendered diff.
package toolview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codalotl/editview/internal/diff"
	"github.com/codalotl/editview/internal/extract"
)

var (
	// ErrNoEdit means nothing resembling an edit was found in the tool call.
	ErrNoEdit = errors.New("no edit found in tool call")

	// ErrIncomplete means some fields were found but the old or new string is missing.
	ErrIncomplete = errors.New("incomplete edit")

	// ErrEditFailed means the tool result reported failure.
	ErrEditFailed = errors.New("edit failed")
)

// State is the display state of a tool call.
type State int

const (
	StateProcessing State = iota // still streaming and the old or new string is not in yet
	StateError                   // finished, nothing extracted
	StatePartial                 // finished, some fields extracted but the old or new string is missing
	StateNoChanges               // old and new strings are identical
	StateSuccess                 // a diff is available
	StateFailed                  // the tool reported success=false
)

func (s State) String() string {
	switch s {
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	case StatePartial:
		return "partial"
	case StateNoChanges:
		return "no_changes"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Input is a tool call as captured from a conversation.
type Input struct {
	// Assistant is the payload the assistant authored (the tool call). Its fields win over Tool's.
	Assistant any

	// Tool is the tool-result payload, if any.
	Tool any

	// Streaming is true while the tool call is still arriving.
	Streaming bool
}

// View is everything needed to display a tool call.
type View struct {
	State State
	Edit  extract.Edit

	// Lines, Chars, and Stats are set only when both the old and new string were extracted.
	Lines []diff.LineChange
	Chars []diff.CharSegment
	Stats diff.Stats
}

// Build extracts the edit from in and computes its diff. If the regular extraction can't find both strings, the legacy deep search is tried on both payloads.
// A nil engine uses one that doesn't log.
func Build(engine *extract.Engine, in Input) View {
	if engine == nil {
		engine = extract.New(nil)
	}

	edit := extract.Merge(engine.Extract(in.Assistant), engine.Extract(in.Tool))
	if !edit.HasStrings() {
		legacy := extract.Merge(engine.ExtractLegacy(in.Assistant), engine.ExtractLegacy(in.Tool))
		edit = extract.Merge(edit, legacy)
	}

	v := View{Edit: edit}
	if edit.HasStrings() {
		v.Lines = diff.Lines(*edit.OldString, *edit.NewString)
		v.Chars = diff.Chars(*edit.OldString, *edit.NewString)
		v.Stats = diff.CalculateStats(v.Lines)
	}
	v.State = stateOf(edit, in.Streaming)
	return v
}

func stateOf(edit extract.Edit, streaming bool) State {
	switch {
	case streaming && !edit.HasStrings():
		return StateProcessing
	case !streaming && edit.Success != nil && !*edit.Success:
		return StateFailed
	case !edit.HasStrings() && edit.IsEmpty():
		return StateError
	case !edit.HasStrings():
		return StatePartial
	case diff.NormalizeNewlines(*edit.OldString) == diff.NormalizeNewlines(*edit.NewString):
		return StateNoChanges
	default:
		return StateSuccess
	}
}

// Path returns the edited file's path, or "" if it wasn't found.
func (v View) Path() string {
	if v.Edit.FilePath == nil {
		return ""
	}
	return *v.Edit.FilePath
}

// Message returns a one-line, human-readable description of v's state.
func (v View) Message() string {
	switch v.State {
	case StateProcessing:
		if missing := v.Edit.Missing(); len(missing) > 0 {
			return "receiving " + strings.Join(missing, ", ") + "…"
		}
		return "receiving edit…"
	case StateError:
		return "could not extract an edit from the tool call"
	case StatePartial:
		return "could not extract " + strings.Join(v.Edit.Missing(), ", ")
	case StateNoChanges:
		return "no changes: old_str and new_str are identical"
	case StateFailed:
		return "the tool reported that the edit failed"
	default:
		return fmt.Sprintf("%s added, %s removed", plural(v.Stats.Additions, "line"), plural(v.Stats.Deletions, "line"))
	}
}

// Err returns nil when v displays a usable result (including one that is still streaming), and otherwise an error wrapping ErrNoEdit, ErrIncomplete, or
// ErrEditFailed.
func (v View) Err() error {
	switch v.State {
	case StateError:
		return ErrNoEdit
	case StatePartial:
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(v.Edit.Missing(), ", "))
	case StateFailed:
		return ErrEditFailed
	default:
		return nil
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
