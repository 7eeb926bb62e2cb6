package lead

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Sanitize recursively rewrites a decoded BSON value into plain
// JSON-safe Go values: object IDs and decimals become strings,
// timestamps become RFC 3339 strings, documents become
// map[string]any and arrays become []any. Scalars the driver already
// decodes to plain Go types pass through unchanged.
func Sanitize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return sanitizeMap(t)
	case map[string]any:
		return sanitizeMap(t)
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = Sanitize(e.Value)
		}
		return out
	case bson.A:
		return sanitizeSlice(t)
	case []any:
		return sanitizeSlice(t)
	case bson.ObjectID:
		return t.Hex()
	case bson.Decimal128:
		return t.String()
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Sanitize(v)
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Sanitize(v)
	}
	return out
}
