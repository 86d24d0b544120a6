package extract

import (
	"strconv"
)

// Edit is a text-replacement edit recovered from a tool-call payload.
//
// A nil field was not found. A non-nil empty string was found and is empty (ex: NewString is "" when the edit deletes text).
type Edit struct {
	FilePath  *string `json:"file_path"`
	OldString *string `json:"old_string"`
	NewString *string `json:"new_string"`
	Success   *bool   `json:"success,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
}

// HasStrings reports whether both OldString and NewString were found.
func (e Edit) HasStrings() bool {
	return e.OldString != nil && e.NewString != nil
}

// IsEmpty reports whether nothing at all was found.
func (e Edit) IsEmpty() bool {
	return e.FilePath == nil && e.OldString == nil && e.NewString == nil && e.Success == nil && e.Timestamp == nil
}

// complete reports whether every field the pattern strategies can find is set.
func (e Edit) complete() bool {
	return e.FilePath != nil && e.OldString != nil && e.NewString != nil
}

// Missing returns the wire names of the path/old/new fields that were not found, in that order.
func (e Edit) Missing() []string {
	var missing []string
	if e.FilePath == nil {
		missing = append(missing, "file_path")
	}
	if e.OldString == nil {
		missing = append(missing, "old_str")
	}
	if e.NewString == nil {
		missing = append(missing, "new_str")
	}
	return missing
}

// fill sets each nil field of e from other.
func (e *Edit) fill(other Edit) {
	if e.FilePath == nil {
		e.FilePath = other.FilePath
	}
	if e.OldString == nil {
		e.OldString = other.OldString
	}
	if e.NewString == nil {
		e.NewString = other.NewString
	}
	if e.Success == nil {
		e.Success = other.Success
	}
	if e.Timestamp == nil {
		e.Timestamp = other.Timestamp
	}
}

// Merge combines two extractions field by field: each field comes from primary when found there, otherwise from fallback.
//
// Callers extract the assistant-authored payload as primary and the tool-result payload as fallback.
func Merge(primary, fallback Edit) Edit {
	out := primary
	out.fill(fallback)
	return out
}

// toString converts a decoded JSON scalar to a string. Objects, arrays, and null are not strings.
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

// toBool converts a decoded JSON bool (or a string spelling one) to a bool.
func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// stringField returns the first of keys in m whose value is a string-like scalar.
func stringField(m map[string]any, keys ...string) *string {
	for _, k := range keys {
		if s, ok := toString(m[k]); ok {
			return &s
		}
	}
	return nil
}

func boolField(m map[string]any, key string) *bool {
	if b, ok := toBool(m[key]); ok {
		return &b
	}
	return nil
}
