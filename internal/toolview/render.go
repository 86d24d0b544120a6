package toolview

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/codalotl/editview/internal/diff"
	"github.com/muesli/termenv"
)

// bodyIndent is the indent of diff lines under the header bullet.
const bodyIndent = "    "

// RenderOptions controls Render.
type RenderOptions struct {
	// Color enables ANSI styling.
	Color bool

	// MaxWidth is the terminal width lines are truncated to. Zero disables truncation.
	MaxWidth int

	// ContextLines is passed through to diff.RenderPretty.
	ContextLines int

	// Highlight, if set, colors each diff line's content. Only used with Color.
	Highlight func(line string) string
}

type styles struct {
	ok      lipgloss.Style
	bad     lipgloss.Style
	warn    lipgloss.Style
	accent  lipgloss.Style
	verb    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func newStyles(color bool) styles {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		accent:  r.NewStyle().Foreground(lipgloss.Color("8")),
		verb:    r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Render renders v as a bullet header line ("• Edit path (+A -D)"), then the positional diff (when there is one), then a "└ message" status line for every
// state except StateSuccess.
func Render(v View, opts RenderOptions) string {
	st := newStyles(opts.Color)

	lines := []string{renderHeader(v, st)}

	if v.Lines != nil && v.State != StateNoChanges {
		maxWidth := 0
		if opts.MaxWidth > 0 {
			maxWidth = max(1, opts.MaxWidth-len(bodyIndent))
		}
		body := diff.RenderPretty(v.Lines, diff.RenderOptions{
			Color:        opts.Color,
			ContextLines: opts.ContextLines,
			MaxWidth:     maxWidth,
			LineNumbers:  true,
			Highlight:    opts.Highlight,
		})
		if body != "" {
			for _, l := range strings.Split(body, "\n") {
				lines = append(lines, bodyIndent+l)
			}
		}
	}

	if v.State != StateSuccess {
		lines = append(lines, "  "+st.accent.Render("└")+" "+statusStyle(v.State, st).Render(v.Message()))
	}

	return strings.Join(lines, "\n")
}

func renderHeader(v View, st styles) string {
	var b strings.Builder

	b.WriteString(bulletStyle(v.State, st).Render("•"))
	b.WriteString(" ")

	verb := "Edit"
	if v.State == StateProcessing {
		verb = "Editing"
	}
	b.WriteString(st.verb.Render(verb))
	b.WriteString(" ")

	if path := v.Path(); path != "" {
		b.WriteString(path)
	} else {
		b.WriteString(st.accent.Render("(unknown file)"))
	}

	if v.Lines != nil && v.State != StateNoChanges {
		b.WriteString(" (")
		b.WriteString(st.added.Render("+" + strconv.Itoa(v.Stats.Additions)))
		b.WriteString(" ")
		b.WriteString(st.removed.Render("-" + strconv.Itoa(v.Stats.Deletions)))
		b.WriteString(")")
	}
	return b.String()
}

func bulletStyle(s State, st styles) lipgloss.Style {
	switch s {
	case StateSuccess, StateNoChanges:
		return st.ok
	case StateError, StateFailed:
		return st.bad
	case StatePartial:
		return st.warn
	default:
		return st.accent
	}
}

func statusStyle(s State, st styles) lipgloss.Style {
	switch s {
	case StateError, StateFailed:
		return st.bad
	case StatePartial:
		return st.warn
	default:
		return st.accent
	}
}
