package expressions

import (
	"encoding/json"
	"sort"
)

// NewScope builds the evaluation data shared by every engine: the document
// variables under "vars". The variables are deep-copied so an expression can
// never mutate the document.
func NewScope(vars map[string]any) map[string]any {
	cp := deepCopyMap(vars)
	if cp == nil {
		cp = map[string]any{}
	}
	return map[string]any{"vars": cp}
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = deepCopyAny(v)
	}
	return cp
}

// deepCopyAny recursively deep-copies maps and slices; other values are
// immutable and returned as is.
func deepCopyAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, item := range val {
			cp[i] = deepCopyAny(item)
		}
		return cp
	case json.RawMessage:
		if val == nil {
			return nil
		}
		cp := make(json.RawMessage, len(val))
		copy(cp, val)
		return cp
	default:
		return v
	}
}

// mapKeys returns the sorted keys of m.
func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
