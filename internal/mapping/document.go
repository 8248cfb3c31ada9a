package mapping

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document is an immutable-once-loaded mapping from event paths to trigger
// codes. Construct with Load, FromMap, or Default; the zero value resolves
// nothing.
//
// Documents are replaced wholesale on reload, never partially merged.
type Document struct {
	root map[string]any
}

// FromMap builds a Document from an in-process tree of nested maps and
// integer leaves. Keys are NFC-normalized; no shape validation is performed,
// so resolution may still fail with InvalidLeafError on malformed trees.
func FromMap(m map[string]any) Document {
	return Document{root: normalizeNode(m)}
}

// Default is the built-in fallback mapping used when a document cannot be
// loaded from disk. It carries the minimal system triad every session needs
// for self-test and diagnostics.
func Default() Document {
	return FromMap(map[string]any{
		"system": map[string]any{
			"test":        int64(1),
			"initialized": int64(2),
			"error":       int64(99),
		},
	})
}

// Resolve maps a dot-delimited event path to its trigger code.
//
// The literal path is checked as a top-level key first, which short-circuits
// pre-flattened documents. Otherwise the path is split on "." and walked one
// segment per step. Fails with *NotFoundError when any segment is absent and
// with *InvalidLeafError when the terminal value is not an integer.
//
// Resolution is a pure read over the loaded tree; O(depth) per call.
func (d Document) Resolve(path string) (int64, error) {
	if d.root == nil {
		return 0, &NotFoundError{Path: path}
	}
	path = norm.NFC.String(path)

	// Fast path: pre-flattened documents keep the dot-joined path as a
	// literal top-level key.
	if v, ok := d.root[path]; ok {
		if code, ok := asCode(v); ok {
			return code, nil
		}
	}

	cur := any(d.root)
	for _, seg := range strings.Split(path, ".") {
		group, ok := cur.(map[string]any)
		if !ok {
			return 0, &NotFoundError{Path: path}
		}
		cur, ok = group[seg]
		if !ok {
			return 0, &NotFoundError{Path: path}
		}
	}

	code, ok := asCode(cur)
	if !ok {
		return 0, &InvalidLeafError{Path: path, Value: cur}
	}
	return code, nil
}

// Flatten returns every leaf as a dot-joined path, sorted. Group nodes with
// non-integer leaves are skipped; Flatten is a reporting aid, not a
// validator.
func (d Document) Flatten() map[string]int64 {
	out := make(map[string]int64)
	flattenNode("", d.root, out)
	return out
}

// Paths returns the sorted list of resolvable event paths.
func (d Document) Paths() []string {
	flat := d.Flatten()
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func flattenNode(prefix string, node any, out map[string]int64) {
	group, ok := node.(map[string]any)
	if !ok {
		return
	}
	for key, v := range group {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if code, ok := asCode(v); ok {
			out[path] = code
			continue
		}
		flattenNode(path, v, out)
	}
}

// normalizeNode deep-copies a tree, NFC-normalizing keys and folding the
// integer representations JSON decoding can produce into int64.
func normalizeNode(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, v := range m {
		out[norm.NFC.String(key)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeNode(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		return val
	default:
		return v
	}
}

// asCode reports whether v is an integer trigger code, folding the numeric
// types that reach us from JSON decoding and hand-built maps.
func asCode(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case json.Number:
		code, err := n.Int64()
		return code, err == nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
