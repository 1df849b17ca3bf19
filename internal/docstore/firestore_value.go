// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"cloud.google.com/go/firestore"
)

// normalizeFields converts the values the Firestore client decodes into
// the plain forms the other backends return: document references become
// their path, nested arrays and maps are walked.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case *firestore.DocumentRef:
		if x == nil {
			return nil
		}
		return x.Path
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeFields(x)
	default:
		return v
	}
}
