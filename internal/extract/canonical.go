package extract

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Canonical encodes e in the canonical tool_execution shape:
//
//	{"tool_execution": {"arguments": {"file_path", "old_str", "new_str"}, "result": {"success"}, "execution_details": {"timestamp"}}}
//
// Nil fields are omitted, as are the result and execution_details objects when they would be empty. Extracting the output yields e again.
func Canonical(e Edit) ([]byte, error) {
	out := []byte(`{"tool_execution":{"arguments":{}}}`)

	sets := []struct {
		path  string
		value any
	}{
		{"tool_execution.arguments.file_path", e.FilePath},
		{"tool_execution.arguments.old_str", e.OldString},
		{"tool_execution.arguments.new_str", e.NewString},
		{"tool_execution.result.success", e.Success},
		{"tool_execution.execution_details.timestamp", e.Timestamp},
	}

	var err error
	for _, s := range sets {
		switch v := s.value.(type) {
		case *string:
			if v == nil {
				continue
			}
			out, err = sjson.SetBytes(out, s.path, *v)
		case *bool:
			if v == nil {
				continue
			}
			out, err = sjson.SetBytes(out, s.path, *v)
		}
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", s.path, err)
		}
	}
	return out, nil
}
