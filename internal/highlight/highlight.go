// Package highlight applies syntax highlighting to single lines of source code for diff rendering.
//
// Only foreground colors are emitted, and each colored token is closed with a foreground reset ("\x1b[39m") instead of a full reset, so a background set by the
// caller (ex: a diff line's pink or green) stays in effect across the whole line.
package highlight

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "dracula"

const fgReset = "\x1b[39m"

// Highlighter colors lines of one file.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// New returns a Highlighter that picks a lexer from filename (plain text if nothing matches) and the named chroma style. An empty styleName means
// DefaultStyle; an unknown one gets chroma's fallback style.
func New(filename string, styleName string) *Highlighter {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	if styleName == "" {
		styleName = DefaultStyle
	}
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: styles.Get(styleName),
	}
}

// StyleExists reports whether name is a registered chroma style.
func StyleExists(name string) bool {
	return slices.Contains(styles.Names(), name)
}

// Line returns line with ANSI foreground colors applied. Each line is lexed on its own, so constructs that span lines (block comments, raw strings) may be
// colored as plain code. If lexing fails, line is returned unchanged.
func (h *Highlighter) Line(line string) string {
	if line == "" {
		return line
	}
	iter, err := h.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var b strings.Builder
	for tok := iter(); tok != chroma.EOF; tok = iter() {
		value := strings.ReplaceAll(tok.Value, "\n", "")
		if value == "" {
			continue
		}
		entry := h.style.Get(tok.Type)
		if !entry.Colour.IsSet() {
			b.WriteString(value)
			continue
		}
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
		b.WriteString(value)
		b.WriteString(fgReset)
	}
	return b.String()
}
