// Package extract recovers a text-replacement edit (file path, old string, new string, and optional result metadata) from tool-call payloads of many shapes:
// canonical structured objects, chat-message wrappers, bare arguments, legacy flat objects, raw JSON text, fenced JSON in markdown, and streamed parameter
// markup that may still be incomplete.
//
// Extraction never fails. Fields that can't be found are nil, and the caller decides whether that means "still streaming" or "invalid input".
package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codalotl/editview/internal/logging"
	"github.com/tidwall/gjson"
)

// maxDepth bounds recursion through wrappers, lists, and JSON text nested in JSON text.
const maxDepth = 8

// previewLen is how much of an unparseable payload is logged.
const previewLen = 80

// Engine extracts edits. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// New returns an Engine that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.OrDiscard(logger)}
}

// Extract returns the edit found in content. content may be a string, []byte, json.RawMessage, map[string]any, []any, a value that marshals to a JSON
// object, or nil.
//
// Strategies run in order, and each only fills fields that are still nil:
//   - text that is itself JSON is parsed and handled like the decoded value
//   - otherwise, fenced JSON code blocks in the text are handled like decoded values
//   - streamed `<parameter name="...">` markup; if any parameter matches, nothing further runs
//   - direct encodings (`<old_str>` tags, old_str="...", old_str: ..., "old_str": "...")
//
// Objects are matched against every shape they fit (see Shapes), highest priority first.
func (e *Engine) Extract(content any) (edit Edit) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract: recovered from panic", slog.Any("panic", r))
			edit = Edit{}
		}
	}()
	return e.extract(content, 0)
}

// ExtractLegacy is Extract followed by a deep search of the object graph for any path/old/new field still nil. It accepts camelCase spellings
// (filePath, oldStr, newStr) and fields buried at any depth, so it may pick up values from unrelated parts of a payload. Only use it as a fallback.
func (e *Engine) ExtractLegacy(content any) (edit Edit) {
	edit = e.Extract(content)
	if edit.complete() {
		return edit
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract: recovered from panic in deep search", slog.Any("panic", r))
		}
	}()

	found := deepSearch(searchRoot(content))
	e.logFound("deep_search", found)
	edit.fill(Edit{FilePath: found.FilePath, OldString: found.OldString, NewString: found.NewString})
	return edit
}

func (e *Engine) extract(content any, depth int) Edit {
	if depth > maxDepth {
		e.logger.Warn("extract: nesting too deep, giving up on value", slog.Int("max_depth", maxDepth))
		return Edit{}
	}

	var out Edit
	for _, shape := range Shapes(content) {
		out.fill(e.extractShape(shape, depth))
	}
	return out
}

func (e *Engine) extractShape(shape Payload, depth int) Edit {
	switch p := shape.(type) {
	case StringPayload:
		return e.extractString(p.Text, depth)
	case ToolExecutionPayload:
		out := Edit{
			FilePath:  stringField(p.Arguments, filePathKeys...),
			OldString: stringField(p.Arguments, oldStringKeys...),
			NewString: stringField(p.Arguments, newStringKeys...),
			Success:   boolField(p.Result, "success"),
			Timestamp: stringField(p.Details, "timestamp"),
		}
		e.logFound("tool_execution", out)
		return out
	case RoleWrappedPayload:
		return e.extract(p.Content, depth+1)
	case ArgumentsPayload:
		out := Edit{
			FilePath:  stringField(p.Arguments, filePathKeys...),
			OldString: stringField(p.Arguments, oldStringKeys...),
			NewString: stringField(p.Arguments, newStringKeys...),
		}
		e.logFound("arguments", out)
		return out
	case DirectFieldsPayload:
		out := Edit{
			FilePath:  stringField(p.Fields, filePathKeys...),
			OldString: stringField(p.Fields, oldStringKeys...),
			NewString: stringField(p.Fields, newStringKeys...),
			Success:   boolField(p.Fields, "success"),
			Timestamp: stringField(p.Fields, "timestamp"),
		}
		e.logFound("direct_fields", out)
		return out
	case ListPayload:
		var out Edit
		for _, item := range p.Items {
			out.fill(e.extract(item, depth+1))
		}
		return out
	default:
		return Edit{}
	}
}

func (e *Engine) extractString(text string, depth int) Edit {
	var out Edit

	trimmed := strings.TrimSpace(text)
	if looksLikeJSON(trimmed) {
		if gjson.Valid(trimmed) {
			out = e.extract(gjson.Parse(trimmed).Value(), depth+1)
		} else {
			e.logger.Debug("extract: payload is not valid JSON, falling back to patterns", slog.String("preview", preview(trimmed)))
		}
	} else {
		for _, block := range fencedJSON(text) {
			out.fill(e.extract(gjson.Parse(block).Value(), depth+1))
		}
	}
	if out.complete() {
		return out
	}

	streamed := matchStreaming(text)
	if !streamed.IsEmpty() {
		e.logFound("streaming_parameters", streamed)
		out.fill(streamed)
		return out
	}

	direct := matchDirect(text)
	e.logFound("direct_patterns", direct)
	out.fill(direct)
	return out
}

// logFound logs which fields a strategy produced. Nothing is logged when it found nothing.
func (e *Engine) logFound(strategy string, found Edit) {
	if found.IsEmpty() {
		return
	}
	var fields []string
	if found.FilePath != nil {
		fields = append(fields, "file_path")
	}
	if found.OldString != nil {
		fields = append(fields, "old_str")
	}
	if found.NewString != nil {
		fields = append(fields, "new_str")
	}
	if found.Success != nil {
		fields = append(fields, "success")
	}
	if found.Timestamp != nil {
		fields = append(fields, "timestamp")
	}
	e.logger.Debug("extract: strategy matched", slog.String("strategy", strategy), slog.String("fields", strings.Join(fields, ",")))
}

// searchRoot returns content as the deep search walks it: JSON text is decoded, maps and slices are kept as is, and other values are round-tripped
// through encoding/json like Shapes does.
func searchRoot(content any) any {
	switch v := content.(type) {
	case nil, map[string]any, []any:
		return v
	case string:
		return decodeJSONText(v)
	case []byte:
		return decodeJSONText(string(v))
	case json.RawMessage:
		return decodeJSONText(string(v))
	}
	b, err := json.Marshal(content)
	if err != nil {
		return content
	}
	return gjson.ParseBytes(b).Value()
}

// decodeJSONText returns the decoded value of text if it is JSON, and text itself otherwise.
func decodeJSONText(text string) any {
	trimmed := strings.TrimSpace(text)
	if looksLikeJSON(trimmed) && gjson.Valid(trimmed) {
		return gjson.Parse(trimmed).Value()
	}
	return text
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return fmt.Sprintf("%s… (%d more chars)", string(r[:previewLen]), len(r)-previewLen)
}
