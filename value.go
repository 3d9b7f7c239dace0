package docgen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// normalize returns a deep copy of data with null-valued object keys
// removed, so strict rendering treats null exactly like an absent key.
// Array elements are kept in place to preserve indexes.
func normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if v == nil {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case json.Number:
		// Keep the caller's textual form; templates print it verbatim.
		return t
	default:
		return v
	}
}

// Lookup resolves a dotted path ("client.address.city") against data.
// Path segments index objects by key and arrays by decimal position.
// It reports false when any segment is absent or null.
func Lookup(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var cur any = data
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) || node[i] == nil {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
