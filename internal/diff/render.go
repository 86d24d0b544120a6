package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Colors (ANSI) for pretty output.
const (
	reset     = "\x1b[0m"
	blackFG   = "\x1b[30m"
	dim       = "\x1b[2m"
	pinkLine  = "\x1b[48;5;224m" // light pink for removed lines
	pinkSpan  = "\x1b[48;5;217m" // slightly darker pink for removed spans
	greenLine = "\x1b[48;5;194m" // light green for added lines
	greenSpan = "\x1b[48;5;114m" // slightly darker green for added spans
	cyanBold  = "\x1b[1;36m"
)

const renderTabWidth = 4

// RenderOptions controls RenderPretty.
type RenderOptions struct {
	// Filename, if set, is printed as a header line ("<name>:").
	Filename string

	// Color enables ANSI colors. Without it the output is plain text.
	Color bool

	// ContextLines is how many unchanged lines are kept before and after each change. Longer unchanged runs are collapsed into a single "⋮" line. A negative
	// value keeps every unchanged line.
	ContextLines int

	// MaxWidth truncates each rendered line (gutter included) to this many terminal columns. Zero or negative disables truncation.
	MaxWidth int

	// LineNumbers adds a gutter with each change's LineNumber.
	LineNumbers bool

	// Highlight, if set and Color is on, decorates a line's content (ex: syntax highlighting). It must only emit foreground escapes so line backgrounds survive.
	Highlight func(line string) string
}

// RenderPretty returns a human-oriented rendering of changes. Each line is prefixed like a unified diff: " " for unchanged, "-" for removed, and "+" for
// added. Since changes are positional, a replaced line shows up as "-" then "+" with the same line number.
//
// Unchanged runs longer than 2*ContextLines are collapsed, except that a leading run keeps only its tail and a trailing run only its head. If changes contains
// no Added or Removed entries, only the header (if any) is returned.
//
// Lines are rendered without a trailing newline and joined with "\n".
func RenderPretty(changes []LineChange, opts RenderOptions) string {
	var out []string

	if opts.Filename != "" {
		header := fmt.Sprintf("%s:", opts.Filename)
		if opts.Color {
			header = cyanBold + header + reset
		}
		out = append(out, header)
	}

	gutterWidth := 0
	if opts.LineNumbers {
		for _, c := range changes {
			if w := len(strconv.Itoa(c.LineNumber)); w > gutterWidth {
				gutterWidth = w
			}
		}
	}

	if !hasChanges(changes) {
		return strings.Join(out, defaultEOL)
	}
	visible := visibleChanges(changes, opts.ContextLines)

	for i := 0; i < len(changes); i++ {
		if !visible[i] {
			j := i
			for j < len(changes) && !visible[j] {
				j++
			}
			out = append(out, renderCollapsed(j-i, gutterWidth, opts))
			i = j - 1
			continue
		}
		out = append(out, renderLineChange(changes[i], gutterWidth, opts))
	}

	return strings.Join(out, defaultEOL)
}

func hasChanges(changes []LineChange) bool {
	for _, c := range changes {
		if c.Type != Unchanged {
			return true
		}
	}
	return false
}

// visibleChanges reports, per index, whether changes[i] is shown.
func visibleChanges(changes []LineChange, contextLines int) []bool {
	visible := make([]bool, len(changes))
	for i, c := range changes {
		if c.Type != Unchanged {
			visible[i] = true
		}
	}
	if contextLines < 0 {
		for i := range visible {
			visible[i] = true
		}
		return visible
	}

	for i, c := range changes {
		if c.Type == Unchanged {
			continue
		}
		for k := 1; k <= contextLines; k++ {
			if i-k >= 0 {
				visible[i-k] = true
			}
			if i+k < len(changes) {
				visible[i+k] = true
			}
		}
	}

	// Don't collapse a single hidden line: the marker would take the same space.
	for i := 1; i < len(visible)-1; i++ {
		if !visible[i] && visible[i-1] && visible[i+1] {
			visible[i] = true
		}
	}
	return visible
}

func renderCollapsed(n int, gutterWidth int, opts RenderOptions) string {
	word := "lines"
	if n == 1 {
		word = "line"
	}
	line := fmt.Sprintf("⋮ %d unchanged %s", n, word)
	if gutterWidth > 0 {
		line = strings.Repeat(" ", gutterWidth) + "   " + line
	}
	if opts.Color {
		return dim + line + reset
	}
	return line
}

func renderLineChange(c LineChange, gutterWidth int, opts RenderOptions) string {
	var marker string
	var text string
	switch c.Type {
	case Unchanged:
		marker, text = " ", c.OldText
	case Removed:
		marker, text = "-", c.OldText
	case Added:
		marker, text = "+", c.NewText
	}

	gutter := ""
	if gutterWidth > 0 {
		gutter = fmt.Sprintf("%*d │ ", gutterWidth, c.LineNumber)
	}

	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", renderTabWidth))
	if opts.MaxWidth > 0 {
		text = truncateWidth(text, opts.MaxWidth-runewidth.StringWidth(gutter)-1)
	}

	if !opts.Color {
		return gutter + marker + text
	}

	if opts.Highlight != nil {
		text = opts.Highlight(text)
	}
	if gutter != "" {
		gutter = dim + gutter + reset
	}

	switch c.Type {
	case Removed:
		return gutter + blackFG + pinkLine + marker + text + reset
	case Added:
		return gutter + blackFG + greenLine + marker + text + reset
	default:
		return gutter + marker + text
	}
}

// truncateWidth cuts s to at most width terminal columns without splitting a grapheme cluster. When s is cut, the last column holds "…".
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		g := iter.Value()
		w := runewidth.StringWidth(g)
		if used+w > width-1 {
			break
		}
		b.WriteString(g)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// RenderChars renders segments inline. With color, removed text has a pink background and added text a green one; otherwise removed text is wrapped in
// "[-" "-]" and added text in "{+" "+}".
func RenderChars(segments []CharSegment, color bool) string {
	var b strings.Builder
	for _, s := range segments {
		switch s.Type {
		case Unchanged:
			b.WriteString(s.Text)
		case Removed:
			if color {
				b.WriteString(blackFG + pinkSpan + s.Text + reset)
			} else {
				b.WriteString("[-" + s.Text + "-]")
			}
		case Added:
			if color {
				b.WriteString(blackFG + greenSpan + s.Text + reset)
			} else {
				b.WriteString("{+" + s.Text + "+}")
			}
		}
	}
	return b.String()
}
