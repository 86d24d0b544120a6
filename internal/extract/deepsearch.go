package extract

import (
	"reflect"
	"sort"
)

// Key spellings the deep search accepts, per field.
var (
	deepFilePathKeys  = []string{"file_path", "filePath"}
	deepOldStringKeys = []string{"old_str", "oldStr", "old_string"}
	deepNewStringKeys = []string{"new_str", "newStr", "new_string"}
)

// deepSearch walks the object graph under root depth-first (objects in sorted key order, arrays in index order) and returns, per field, the first string-like
// value found under one of its key spellings. An object's own keys are checked before its children.
//
// The walk uses an explicit stack and remembers every map and slice it has entered, so self-referencing graphs terminate.
func deepSearch(root any) Edit {
	var out Edit

	type visitKey struct {
		ptr uintptr
		len int
	}
	visited := map[visitKey]bool{}
	enter := func(v any) bool {
		rv := reflect.ValueOf(v)
		k := visitKey{ptr: rv.Pointer(), len: rv.Len()}
		if visited[k] {
			return false
		}
		visited[k] = true
		return true
	}

	stack := []any{root}
	for len(stack) > 0 && !out.complete() {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := cur.(type) {
		case map[string]any:
			if !enter(v) {
				continue
			}
			if out.FilePath == nil {
				out.FilePath = stringField(v, deepFilePathKeys...)
			}
			if out.OldString == nil {
				out.OldString = stringField(v, deepOldStringKeys...)
			}
			if out.NewString == nil {
				out.NewString = stringField(v, deepNewStringKeys...)
			}

			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			// Push in reverse so the first key is popped first.
			for i := len(keys) - 1; i >= 0; i-- {
				if isContainer(v[keys[i]]) {
					stack = append(stack, v[keys[i]])
				}
			}
		case []any:
			if len(v) == 0 || !enter(v) {
				continue
			}
			for i := len(v) - 1; i >= 0; i-- {
				if isContainer(v[i]) {
					stack = append(stack, v[i])
				}
			}
		}
	}
	return out
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
