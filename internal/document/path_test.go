package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	errs "github.com/ipwatch/internal/errors"
)

func TestApplyPath(t *testing.T) {
	tests := []struct {
		name  string
		doc   any
		path  string
		value any
		want  any
	}{
		{
			name:  "plain key",
			doc:   map[string]any{},
			path:  "key",
			value: "v",
			want:  map[string]any{"key": "v"},
		},
		{
			name:  "nested objects are created",
			doc:   map[string]any{},
			path:  "a.b",
			value: "x",
			want:  map[string]any{"a": map[string]any{"b": "x"}},
		},
		{
			name:  "null root becomes an object",
			doc:   nil,
			path:  "a",
			value: 1,
			want:  map[string]any{"a": 1},
		},
		{
			name:  "append to empty array",
			doc:   map[string]any{"arr": []any{}},
			path:  "arr[0]",
			value: "y",
			want:  map[string]any{"arr": []any{"y"}},
		},
		{
			name:  "out of range index appends",
			doc:   map[string]any{"arr": []any{"y"}},
			path:  "arr[5]",
			value: "z",
			want:  map[string]any{"arr": []any{"y", "z"}},
		},
		{
			name:  "missing array is created",
			doc:   map[string]any{},
			path:  "arr[0]",
			value: true,
			want:  map[string]any{"arr": []any{true}},
		},
		{
			name:  "overwrite existing element",
			doc:   map[string]any{"arr": []any{"a", "b"}},
			path:  "arr[1]",
			value: "B",
			want:  map[string]any{"arr": []any{"a", "B"}},
		},
		{
			name:  "descend through array element",
			doc:   map[string]any{"key": []any{map[string]any{"nestedKey": "oldValue", "keep": 1}}},
			path:  "key[0].nestedKey",
			value: "newValue",
			want:  map[string]any{"key": []any{map[string]any{"nestedKey": "newValue", "keep": 1}}},
		},
		{
			name:  "append creates intermediate object",
			doc:   map[string]any{"list": []any{}},
			path:  "list[0].name",
			value: "n",
			want:  map[string]any{"list": []any{map[string]any{"name": "n"}}},
		},
		{
			name:  "nested subscripts",
			doc:   map[string]any{"m": []any{[]any{1, 2}}},
			path:  "m[0][1]",
			value: 9,
			want:  map[string]any{"m": []any{[]any{1, 9}}},
		},
		{
			name:  "array root",
			doc:   []any{map[string]any{"x": 1}},
			path:  "[0].x",
			value: 2,
			want:  []any{map[string]any{"x": 2}},
		},
		{
			name:  "siblings untouched",
			doc:   map[string]any{"a": map[string]any{"b": 1, "c": 2}, "d": "e"},
			path:  "a.b",
			value: map[string]any{"deep": []any{}},
			want:  map[string]any{"a": map[string]any{"b": map[string]any{"deep": []any{}}, "c": 2}, "d": "e"},
		},
		{
			name:  "stray closing bracket ignored",
			doc:   map[string]any{},
			path:  "a]",
			value: 1,
			want:  map[string]any{"a": 1},
		},
		{
			name:  "stray closing bracket after subscript ignored",
			doc:   map[string]any{"a": []any{"x"}},
			path:  "a[0]].b",
			value: 2,
			want:  map[string]any{"a": []any{map[string]any{"b": 2}}},
		},
		{
			name:  "trailing stray closing brackets after subscript",
			doc:   map[string]any{"a": []any{"x"}},
			path:  "a[0]]]",
			value: "y",
			want:  map[string]any{"a": []any{"y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := MustFromAny(tt.doc)
			got, err := ApplyPath(doc, tt.path, MustFromAny(tt.value))
			require.NoError(t, err)
			want := MustFromAny(tt.want)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestApplyPathDoesNotMutateInput(t *testing.T) {
	doc := MustFromAny(map[string]any{"a": map[string]any{"b": 1}, "arr": []any{1}})
	before := doc.String()

	_, err := ApplyPath(doc, "a.b", TextValue("changed"))
	require.NoError(t, err)
	_, err = ApplyPath(doc, "arr[0]", TextValue("changed"))
	require.NoError(t, err)
	_, err = ApplyPath(doc, "arr[3]", TextValue("appended"))
	require.NoError(t, err)

	assert.Equal(t, before, doc.String())
}

func TestApplyPathInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		path string
	}{
		{"empty path", map[string]any{}, ""},
		{"trailing dot", map[string]any{}, "a."},
		{"leading dot", map[string]any{}, ".a"},
		{"double dot", map[string]any{}, "a..b"},
		{"unterminated bracket", map[string]any{}, "a[0"},
		{"non numeric index", map[string]any{}, "a[x]"},
		{"negative index", map[string]any{}, "a[-1]"},
		{"empty index", map[string]any{}, "a[]"},
		{"text after subscript", map[string]any{}, "a[0]b"},
		{"text after stray closing bracket", map[string]any{}, "a[0]]b"},
		{"subscript after dot", map[string]any{}, "a.[0]"},
		{"only closing brackets", map[string]any{}, "]]"},
		{"key into array", map[string]any{"a": []any{}}, "a.b"},
		{"key into text", map[string]any{"a": "s"}, "a.b"},
		{"index into object", map[string]any{"a": map[string]any{}}, "a[0]"},
		{"index into number", map[string]any{"a": 3}, "a[0]"},
		{"key on array root", []any{}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyPath(MustFromAny(tt.doc), tt.path, TextValue("v"))
			require.Error(t, err)
			assert.True(t, errs.IsInvalidPath(err), "got %v", err)
		})
	}
}

func TestLookup(t *testing.T) {
	doc := MustFromAny(map[string]any{
		"a":   map[string]any{"b": "x"},
		"arr": []any{map[string]any{"c": 1}},
	})

	v, ok, err := Lookup(doc, "a.b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, TextValue("x").Equal(v))

	v, ok, err = Lookup(doc, "arr[0].c")
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := v.AsNumber()
	assert.Equal(t, 1.0, n)

	_, ok, err = Lookup(doc, "arr[3].c")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Lookup(doc, "a.b.c")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Lookup(doc, "a.")
	assert.True(t, errs.IsInvalidPath(err))
}

var (
	keyGen  = rapid.SampledFrom([]string{"a", "b", "c"})
	leafGen = rapid.Custom(func(t *rapid.T) Value {
		switch rapid.IntRange(0, 3).Draw(t, "leafKind") {
		case 0:
			return NullValue()
		case 1:
			return BoolValue(rapid.Bool().Draw(t, "bool"))
		case 2:
			return NumberValue(float64(rapid.IntRange(-1000, 1000).Draw(t, "number")))
		default:
			return TextValue(rapid.StringN(0, 8, -1).Draw(t, "text"))
		}
	})
	pathGen = rapid.Custom(func(t *rapid.T) string {
		segments := rapid.IntRange(1, 3).Draw(t, "segments")
		parts := make([]string, segments)
		for i := range parts {
			var b strings.Builder
			b.WriteString(keyGen.Draw(t, "key"))
			for j := rapid.IntRange(0, 2).Draw(t, "subscripts"); j > 0; j-- {
				fmt.Fprintf(&b, "[%d]", rapid.IntRange(0, 3).Draw(t, "index"))
			}
			parts[i] = b.String()
		}
		return strings.Join(parts, ".")
	})
	docGen = rapid.Custom(func(t *rapid.T) Value {
		doc := EmptyObject()
		for i := rapid.IntRange(0, 6).Draw(t, "writes"); i > 0; i-- {
			if next, err := ApplyPath(doc, pathGen.Draw(t, "seedPath"), leafGen.Draw(t, "seedValue")); err == nil {
				doc = next
			}
		}
		return doc
	})
)

// subscriptsInRange reports whether every subscript in path addresses an
// existing element or the slot right after the last one. Beyond that the
// append policy makes a second write land one slot further on.
func subscriptsInRange(doc Value, path string) bool {
	steps, err := parsePath(path)
	if err != nil {
		return false
	}
	node := doc
	for _, s := range steps {
		if s.isIndex {
			if s.index > node.Len() || (node.Kind() != Array && s.index > 0) {
				return false
			}
			node, _ = node.Index(s.index)
			continue
		}
		node, _ = node.Get(s.key)
	}
	return true
}

func TestApplyPathOverwriteIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := docGen.Draw(t, "doc")
		path := pathGen.Draw(t, "path")
		v1 := leafGen.Draw(t, "v1")
		v2 := leafGen.Draw(t, "v2")

		direct, err := ApplyPath(doc, path, v2)
		if err != nil {
			if !errs.IsInvalidPath(err) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if !subscriptsInRange(doc, path) {
			return
		}

		once, err := ApplyPath(doc, path, v1)
		if err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		twice, err := ApplyPath(once, path, v2)
		if err != nil {
			t.Fatalf("second write failed: %v", err)
		}
		if !twice.Equal(direct) {
			t.Fatalf("overwrite not idempotent for %q: %s != %s", path, twice, direct)
		}

		got, ok, err := Lookup(direct, path)
		if err != nil || !ok || !got.Equal(v2) {
			t.Fatalf("lookup %q after write: got %s ok=%v err=%v", path, got, ok, err)
		}
	})
}
