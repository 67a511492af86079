package document

import (
	"strconv"
	"strings"

	errs "github.com/ipwatch/internal/errors"
)

// step is one traversal instruction of a parsed path: either an object key
// or an array index.
type step struct {
	key     string
	index   int
	isIndex bool
}

// parsePath splits a path such as "a.b[0].c" into steps.
//
// Segments are separated by '.'; each segment is an optional key followed by
// zero or more [n] subscripts. Only the first segment may omit its key, which
// addresses a document whose root is an array ("[0].name"). A ']' outside a
// subscript is ignored.
func parsePath(path string) ([]step, error) {
	if path == "" {
		return nil, errs.InvalidPath(path, "empty path")
	}

	var (
		steps   []step
		key     strings.Builder
		segment int
	)

	flushKey := func(at int) error {
		if key.Len() == 0 {
			return errs.InvalidPath(path, "empty key at offset %d", at)
		}
		steps = append(steps, step{key: key.String()})
		key.Reset()
		return nil
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			if key.Len() > 0 {
				if err := flushKey(i); err != nil {
					return nil, err
				}
			} else if i == 0 || path[i-1] != ']' {
				return nil, errs.InvalidPath(path, "empty segment at offset %d", i)
			}
			if i == len(path)-1 {
				return nil, errs.InvalidPath(path, "trailing '.'")
			}
			segment++
		case '[':
			if key.Len() > 0 {
				if err := flushKey(i); err != nil {
					return nil, err
				}
			} else if segment > 0 && path[i-1] == '.' {
				return nil, errs.InvalidPath(path, "subscript without key at offset %d", i)
			}
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				return nil, errs.InvalidPath(path, "unterminated '[' at offset %d", i)
			}
			digits := path[i+1 : i+1+end]
			index, err := parseIndex(digits)
			if err != nil {
				return nil, errs.InvalidPath(path, "bad index %q at offset %d", digits, i)
			}
			steps = append(steps, step{index: index, isIndex: true})
			i += end + 1
			for i+1 < len(path) && path[i+1] == ']' {
				i++
			}
			if next := i + 1; next < len(path) && path[next] != '.' && path[next] != '[' {
				return nil, errs.InvalidPath(path, "unexpected %q after subscript at offset %d", path[next], next)
			}
		case ']':
		default:
			key.WriteByte(c)
		}
	}
	if key.Len() > 0 {
		steps = append(steps, step{key: key.String()})
	}
	if len(steps) == 0 {
		return nil, errs.InvalidPath(path, "no keys or subscripts")
	}
	return steps, nil
}

func parseIndex(digits string) (int, error) {
	if digits == "" {
		return 0, strconv.ErrSyntax
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(digits)
}

// ApplyPath returns a copy of doc with value placed at path. Intermediate
// objects and arrays are created when missing; subtrees off the path are left
// as they were.
//
// A subscript past the end of an array appends rather than padding, so
// "arr[5]" on a one element array writes position 1. Descending through a
// node of the wrong shape (a key into an array, a subscript into text) is an
// InvalidPath error instead of a silent overwrite.
func ApplyPath(doc Value, path string, value Value) (Value, error) {
	steps, err := parsePath(path)
	if err != nil {
		return Value{}, err
	}
	return apply(doc, steps, value, path)
}

func apply(node Value, steps []step, value Value, path string) (Value, error) {
	if len(steps) == 0 {
		return value, nil
	}
	s, rest := steps[0], steps[1:]

	if s.isIndex {
		var items []Value
		switch node.kind {
		case Null:
		case Array:
			items = node.arr
		default:
			return Value{}, errs.InvalidPath(path, "cannot index %s with [%d]", node.kind, s.index)
		}

		out := make([]Value, len(items), len(items)+1)
		copy(out, items)
		if s.index >= len(items) {
			child, err := apply(NullValue(), rest, value, path)
			if err != nil {
				return Value{}, err
			}
			out = append(out, child)
		} else {
			child, err := apply(items[s.index], rest, value, path)
			if err != nil {
				return Value{}, err
			}
			out[s.index] = child
		}
		return Value{kind: Array, arr: out}, nil
	}

	if node.kind != Null && node.kind != Object {
		return Value{}, errs.InvalidPath(path, "cannot set key %q on %s", s.key, node.kind)
	}
	current, _ := node.Get(s.key)
	child, err := apply(current, rest, value, path)
	if err != nil {
		return Value{}, err
	}
	out, _ := node.With(s.key, child)
	return out, nil
}

// Lookup returns the value at path. A path that runs off the document, or
// through a node of the wrong shape, reports found == false; only a
// malformed path is an error.
func Lookup(doc Value, path string) (Value, bool, error) {
	steps, err := parsePath(path)
	if err != nil {
		return Value{}, false, err
	}
	node := doc
	for _, s := range steps {
		var ok bool
		if s.isIndex {
			node, ok = node.Index(s.index)
		} else {
			node, ok = node.Get(s.key)
		}
		if !ok {
			return Value{}, false, nil
		}
	}
	return node, true, nil
}
