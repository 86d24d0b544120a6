package extract

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestExtract_JSONText(t *testing.T) {
	e := New(nil)
	got := e.Extract(`{"old_str": "foo", "new_str": "bar", "file_path": "x.py"}`)
	assert.Equal(t, Edit{FilePath: ptr("x.py"), OldString: ptr("foo"), NewString: ptr("bar")}, got)
}

func TestExtract_StreamingPartial(t *testing.T) {
	e := New(nil)
	got := e.Extract(`<parameter name="file_path">x.py</parameter><parameter name="old_str">foo`)
	assert.Equal(t, Edit{FilePath: ptr("x.py"), OldString: ptr("foo")}, got)
	assert.Equal(t, []string{"new_str"}, got.Missing())
}

func TestExtract_TruncatedJSON(t *testing.T) {
	e := New(nil)
	var got Edit
	require.NotPanics(t, func() {
		got = e.Extract(`{"old_str": "foo", "new_str": `)
	})
	assert.Nil(t, got.Success)
	assert.Nil(t, got.FilePath)
	assert.Nil(t, got.NewString)
	require.NotNil(t, got.OldString)
	assert.Equal(t, "foo", *got.OldString)
}

func TestExtract_BracketedButInvalidJSON(t *testing.T) {
	e := New(nil)
	got := e.Extract(`{"file_path": "a.go", "old_str": "x", "new_str": "y"}}`)
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, got)
}

func TestExtract_ToolExecution(t *testing.T) {
	e := New(nil)
	content := map[string]any{
		"tool_execution": map[string]any{
			"arguments": map[string]any{
				"file_path": "main.go",
				"old_str":   "a := 1",
				"new_str":   "a := 2",
			},
			"result":            map[string]any{"success": true},
			"execution_details": map[string]any{"timestamp": "2024-05-01T10:00:00Z"},
		},
	}
	got := e.Extract(content)
	exp := Edit{
		FilePath:  ptr("main.go"),
		OldString: ptr("a := 1"),
		NewString: ptr("a := 2"),
		Success:   ptr(true),
		Timestamp: ptr("2024-05-01T10:00:00Z"),
	}
	assert.Equal(t, exp, got)
}

func TestExtract_ToolExecutionWinsOverDirectFields(t *testing.T) {
	e := New(nil)
	content := map[string]any{
		"tool_execution": map[string]any{
			"arguments": map[string]any{"old_str": "a"},
		},
		"old_str": "z",
		"new_str": "b",
	}
	got := e.Extract(content)
	assert.Equal(t, Edit{OldString: ptr("a"), NewString: ptr("b")}, got)
}

func TestExtract_RoleWrapped(t *testing.T) {
	e := New(nil)

	t.Run("string content", func(t *testing.T) {
		content := map[string]any{
			"role":    "assistant",
			"content": `<parameter name="file_path">a.go</parameter><parameter name="old_str">x</parameter><parameter name="new_str">y</parameter>`,
		}
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.Extract(content))
	})

	t.Run("content blocks", func(t *testing.T) {
		content := map[string]any{
			"role": "assistant",
			"content": []any{
				map[string]any{"type": "text", "text": "Editing the file."},
				map[string]any{
					"type":  "tool_use",
					"name":  "str_replace",
					"input": map[string]any{"file_path": "a.go", "old_string": "x", "new_string": "y"},
				},
			},
		}
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.Extract(content))
	})

	t.Run("deeply nested", func(t *testing.T) {
		var content any = map[string]any{"old_str": "x"}
		for i := 0; i < 3*maxDepth; i++ {
			content = map[string]any{"role": "user", "content": content}
		}
		var got Edit
		require.NotPanics(t, func() { got = e.Extract(content) })
		assert.True(t, got.IsEmpty())
	})
}

func TestExtract_Arguments(t *testing.T) {
	e := New(nil)

	t.Run("object", func(t *testing.T) {
		content := map[string]any{
			"arguments": map[string]any{"file_path": "a.go", "old_str": "x", "new_str": ""},
		}
		got := e.Extract(content)
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("")}, got)
		assert.True(t, got.HasStrings())
	})

	t.Run("JSON string", func(t *testing.T) {
		content := map[string]any{
			"name":      "edit",
			"arguments": `{"file_path":"a.go","old_str":"x","new_str":"y"}`,
		}
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.Extract(content))
	})
}

func TestExtract_DirectFields(t *testing.T) {
	e := New(nil)
	content := map[string]any{
		"file_path": "a.go",
		"old_str":   "x",
		"new_str":   "y",
		"success":   false,
		"timestamp": "2024-05-01T10:00:00Z",
	}
	exp := Edit{
		FilePath:  ptr("a.go"),
		OldString: ptr("x"),
		NewString: ptr("y"),
		Success:   ptr(false),
		Timestamp: ptr("2024-05-01T10:00:00Z"),
	}
	assert.Equal(t, exp, e.Extract(content))
}

func TestExtract_Struct(t *testing.T) {
	type args struct {
		FilePath string `json:"file_path"`
		OldStr   string `json:"old_str"`
		NewStr   string `json:"new_str"`
	}
	e := New(nil)
	got := e.Extract(args{FilePath: "a.go", OldStr: "x", NewStr: "y"})
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, got)
}

func TestExtract_Bytes(t *testing.T) {
	e := New(nil)
	got := e.Extract([]byte(`{"arguments": {"file_path": "a.go", "old_str": "x", "new_str": "y"}}`))
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, got)
}

func TestExtract_DirectPatterns(t *testing.T) {
	e := New(nil)

	t.Run("tags and key colon", func(t *testing.T) {
		got := e.Extract("<old_str>a\nb</old_str>\n<new-str>c</new-str>\nfile_path:  main.go  \n")
		assert.Equal(t, Edit{FilePath: ptr("main.go"), OldString: ptr("a\nb"), NewString: ptr("c")}, got)
	})

	t.Run("key equals", func(t *testing.T) {
		got := e.Extract(`old_str="a\"b" new_str="c" file-path="x.go"`)
		assert.Equal(t, Edit{FilePath: ptr("x.go"), OldString: ptr(`a"b`), NewString: ptr("c")}, got)
	})

	t.Run("json keys in prose", func(t *testing.T) {
		got := e.Extract(`calling edit with "file_path": "a.go", "old_str": "x\ty", "new_str": "z" and more`)
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x\ty"), NewString: ptr("z")}, got)
	})
}

func TestExtract_StreamingSkipsDirectPatterns(t *testing.T) {
	e := New(nil)
	got := e.Extract(`<parameter name="old_str">a</parameter> new_str: b`)
	assert.Equal(t, Edit{OldString: ptr("a")}, got)
}

func TestExtract_StreamingAliases(t *testing.T) {
	e := New(nil)
	got := e.Extract(`<parameter name='file_path'> a.go </parameter><parameter name='old_string'>x</parameter><parameter name="new_string"></parameter>`)
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("")}, got)
}

func TestExtract_FencedJSON(t *testing.T) {
	e := New(nil)
	text := "Here is the edit:\n\n```json\n{\"file_path\": \"a.go\", \"old_str\": \"x\", \"new_str\": \"y\"}\n```\n"
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.Extract(text))
}

func TestExtract_FencedJSONFilledByPatterns(t *testing.T) {
	e := New(nil)
	text := "file_path: a.go\n\n```\n{\"old_str\": \"x\", \"new_str\": \"y\"}\n```\n"
	assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.Extract(text))
}

func TestExtract_Unknown(t *testing.T) {
	e := New(nil)
	for _, content := range []any{nil, 42, true, "", "just some prose", map[string]any{"foo": "bar"}, []any{}} {
		var got Edit
		require.NotPanics(t, func() { got = e.Extract(content) })
		assert.True(t, got.IsEmpty(), "content: %#v", content)
	}
}

func TestExtract_Concurrent(t *testing.T) {
	e := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := e.Extract(`{"old_str": "foo", "new_str": "bar", "file_path": "x.py"}`)
			assert.True(t, got.HasStrings())
		}()
	}
	wg.Wait()
}

func TestExtractLegacy(t *testing.T) {
	e := New(nil)

	t.Run("buried camelCase", func(t *testing.T) {
		content := map[string]any{
			"data": map[string]any{"payload": map[string]any{"filePath": "a.go", "oldStr": "x"}},
			"meta": []any{map[string]any{"newStr": "y"}},
		}
		assert.True(t, e.Extract(content).IsEmpty())
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("x"), NewString: ptr("y")}, e.ExtractLegacy(content))
	})

	t.Run("json text", func(t *testing.T) {
		got := e.ExtractLegacy(`{"x": {"oldStr": "o"}}`)
		assert.Equal(t, Edit{OldString: ptr("o")}, got)
	})

	t.Run("raw message", func(t *testing.T) {
		raw := json.RawMessage(`{"x": {"filePath": "a.go", "oldStr": "o", "newStr": "n"}}`)
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("o"), NewString: ptr("n")}, e.ExtractLegacy(raw))
	})

	t.Run("struct", func(t *testing.T) {
		type inner struct {
			FilePath string `json:"filePath"`
			OldStr   string `json:"oldStr"`
			NewStr   string `json:"newStr"`
		}
		type outer struct {
			Data inner `json:"data"`
		}
		got := e.ExtractLegacy(outer{Data: inner{FilePath: "a.go", OldStr: "o", NewStr: "n"}})
		assert.Equal(t, Edit{FilePath: ptr("a.go"), OldString: ptr("o"), NewString: ptr("n")}, got)
	})

	t.Run("first in sorted order wins", func(t *testing.T) {
		content := map[string]any{
			"b": map[string]any{"filePath": "second"},
			"a": map[string]any{"filePath": "first"},
		}
		assert.Equal(t, Edit{FilePath: ptr("first")}, e.ExtractLegacy(content))
	})

	t.Run("extract wins over deep search", func(t *testing.T) {
		content := map[string]any{
			"arguments": map[string]any{"old_str": "x"},
			"nested":    map[string]any{"oldStr": "ignored", "newStr": "y"},
		}
		assert.Equal(t, Edit{OldString: ptr("x"), NewString: ptr("y")}, e.ExtractLegacy(content))
	})

	t.Run("cycle", func(t *testing.T) {
		m := map[string]any{"oldStr": "x"}
		m["self"] = m
		m["nested"] = []any{m, map[string]any{"newStr": "y"}}

		var got Edit
		require.NotPanics(t, func() { got = e.ExtractLegacy(m) })
		assert.Equal(t, Edit{OldString: ptr("x"), NewString: ptr("y")}, got)
	})
}

func TestMerge(t *testing.T) {
	primary := Edit{OldString: ptr("a")}
	fallback := Edit{OldString: ptr("b"), NewString: ptr("c"), Success: ptr(true)}

	got := Merge(primary, fallback)
	assert.Equal(t, Edit{OldString: ptr("a"), NewString: ptr("c"), Success: ptr(true)}, got)
	assert.Equal(t, Edit{OldString: ptr("a")}, primary)
}

func TestCanonical(t *testing.T) {
	full := Edit{
		FilePath:  ptr("dir/a.go"),
		OldString: ptr("line1\nline2 \"quoted\""),
		NewString: ptr(""),
		Success:   ptr(true),
		Timestamp: ptr("2024-05-01T10:00:00Z"),
	}

	b, err := Canonical(full)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool_execution": {
		"arguments": {"file_path": "dir/a.go", "old_str": "line1\nline2 \"quoted\"", "new_str": ""},
		"result": {"success": true},
		"execution_details": {"timestamp": "2024-05-01T10:00:00Z"}
	}}`, string(b))

	e := New(nil)
	assert.Equal(t, full, e.Extract(b))
	assert.Equal(t, full, e.Extract(string(b)))
}

func TestCanonical_OmitsNil(t *testing.T) {
	partial := Edit{FilePath: ptr("a.go"), Success: ptr(false)}

	b, err := Canonical(partial)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool_execution": {"arguments": {"file_path": "a.go"}, "result": {"success": false}}}`, string(b))
	assert.False(t, strings.Contains(string(b), "execution_details"))

	assert.Equal(t, partial, New(nil).Extract(b))

	b, err = Canonical(Edit{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool_execution": {"arguments": {}}}`, string(b))
}
