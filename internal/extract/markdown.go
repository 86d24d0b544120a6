package extract

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// fencedJSON returns the bodies of the code blocks in content that hold valid JSON objects or arrays, in document order.
func fencedJSON(content string) []string {
	if !strings.Contains(content, "```") && !strings.Contains(content, "~~~") {
		return nil
	}

	source := []byte(content)
	doc := markdown.Parser().Parse(gmtext.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		code, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var body bytes.Buffer
		lines := code.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			body.Write(segment.Value(source))
		}

		trimmed := strings.TrimSpace(body.String())
		if looksLikeJSON(trimmed) && gjson.Valid(trimmed) {
			blocks = append(blocks, trimmed)
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// looksLikeJSON reports whether trimmed is bracketed like a JSON object or array.
func looksLikeJSON(trimmed string) bool {
	if len(trimmed) < 2 {
		return false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}
