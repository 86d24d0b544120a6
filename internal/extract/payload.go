package extract

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Field names accepted inside structured payloads, in priority order.
var (
	filePathKeys  = []string{"file_path"}
	oldStringKeys = []string{"old_str", "old_string"}
	newStringKeys = []string{"new_str", "new_string"}
)

// Payload is one of the known shapes a tool-call payload comes in:
//   - StringPayload: raw text (markup, JSON text, or a mix; maybe truncated)
//   - ToolExecutionPayload: {"tool_execution": {"arguments": {...}, "result": {...}, "execution_details": {...}}}
//   - RoleWrappedPayload: {"role": ..., "content": ...}
//   - ArgumentsPayload: {"arguments": {...}} (or {"input": {...}} as used by tool_use blocks)
//   - DirectFieldsPayload: {"old_str": ..., "new_str": ..., "file_path": ..., "success": ..., "timestamp": ...}
//   - ListPayload: a JSON array, such as a list of content blocks
//   - UnknownPayload: anything else
type Payload interface {
	isPayload()
}

// StringPayload is raw text.
type StringPayload struct {
	Text string
}

// ToolExecutionPayload is the canonical structured form. Any of the maps may be nil.
type ToolExecutionPayload struct {
	Arguments map[string]any
	Result    map[string]any
	Details   map[string]any
}

// RoleWrappedPayload is a chat message whose Content holds the real payload.
type RoleWrappedPayload struct {
	Role    string
	Content any
}

// ArgumentsPayload holds the tool arguments at the top level.
type ArgumentsPayload struct {
	Arguments map[string]any
}

// DirectFieldsPayload has the edit fields as direct properties.
type DirectFieldsPayload struct {
	Fields map[string]any
}

// ListPayload is an array whose items are payloads themselves.
type ListPayload struct {
	Items []any
}

// UnknownPayload is any value of no known shape. It never yields fields.
type UnknownPayload struct {
	Value any
}

func (StringPayload) isPayload()        {}
func (ToolExecutionPayload) isPayload() {}
func (RoleWrappedPayload) isPayload()   {}
func (ArgumentsPayload) isPayload()     {}
func (DirectFieldsPayload) isPayload()  {}
func (ListPayload) isPayload()          {}
func (UnknownPayload) isPayload()       {}

// Classify returns the highest-priority shape content matches. See Shapes for objects that match several.
func Classify(content any) Payload {
	shapes := Shapes(content)
	return shapes[0]
}

// Shapes returns every shape content matches, highest priority first. The result is never empty; content of no known shape yields a single UnknownPayload.
//
// Object priority is ToolExecutionPayload, RoleWrappedPayload, ArgumentsPayload, DirectFieldsPayload. Values that are neither strings, byte slices, maps, nor
// slices are round-tripped through encoding/json, so structs with json tags classify like the objects they encode to.
func Shapes(content any) []Payload {
	switch v := content.(type) {
	case nil:
		return []Payload{UnknownPayload{}}
	case string:
		return []Payload{StringPayload{Text: v}}
	case []byte:
		return []Payload{StringPayload{Text: string(v)}}
	case json.RawMessage:
		return []Payload{StringPayload{Text: string(v)}}
	case map[string]any:
		return objectShapes(v)
	case []any:
		return []Payload{ListPayload{Items: v}}
	}

	b, err := json.Marshal(content)
	if err != nil {
		return []Payload{UnknownPayload{Value: content}}
	}
	switch decoded := gjson.ParseBytes(b).Value().(type) {
	case map[string]any:
		return objectShapes(decoded)
	case []any:
		return []Payload{ListPayload{Items: decoded}}
	default:
		return []Payload{UnknownPayload{Value: content}}
	}
}

func objectShapes(m map[string]any) []Payload {
	var shapes []Payload

	if te := asObject(m["tool_execution"]); te != nil {
		shapes = append(shapes, ToolExecutionPayload{
			Arguments: asObject(te["arguments"]),
			Result:    asObject(te["result"]),
			Details:   asObject(te["execution_details"]),
		})
	}

	if content, ok := m["content"]; ok {
		if role, hasRole := m["role"]; hasRole {
			roleStr, _ := toString(role)
			shapes = append(shapes, RoleWrappedPayload{Role: roleStr, Content: content})
		}
	}

	if args := asObject(m["arguments"]); args != nil {
		shapes = append(shapes, ArgumentsPayload{Arguments: args})
	} else if input := asObject(m["input"]); input != nil {
		shapes = append(shapes, ArgumentsPayload{Arguments: input})
	}

	if hasAnyKey(m, filePathKeys, oldStringKeys, newStringKeys, []string{"success", "timestamp"}) {
		shapes = append(shapes, DirectFieldsPayload{Fields: m})
	}

	if len(shapes) == 0 {
		return []Payload{UnknownPayload{Value: m}}
	}
	return shapes
}

// asObject returns v as an object. A string holding a JSON object (as in OpenAI function-call arguments) is decoded.
func asObject(v any) map[string]any {
	switch o := v.(type) {
	case map[string]any:
		return o
	case string:
		trimmed := strings.TrimSpace(o)
		if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
			return nil
		}
		m, _ := gjson.Parse(trimmed).Value().(map[string]any)
		return m
	default:
		return nil
	}
}

func hasAnyKey(m map[string]any, keyLists ...[]string) bool {
	for _, keys := range keyLists {
		for _, k := range keys {
			if _, ok := m[k]; ok {
				return true
			}
		}
	}
	return false
}
