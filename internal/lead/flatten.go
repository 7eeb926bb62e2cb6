package lead

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Flatten converts a raw stored document into a fully-populated Lead.
// The document is sanitized first, the store's primary-key field is
// dropped, and every output field falls back to its documented default.
// A lead without a non-empty output map is pending: its analysis fields
// are forced to the pending defaults regardless of what is stored.
func Flatten(doc bson.M) Lead {
	m := asMap(Sanitize(doc))
	delete(m, "_id")

	output := asMap(m["output"])
	hasOutput := len(output) > 0

	l := Lead{
		SessionID:     stringify(m["sessionId"]),
		MessageLength: asCount(m["messageLength"]),
		AnalysedAt:    asOptString(m["analysedAt"]),
		LeadAnalysed:  asBool(m["leadAnalysed"]),
		HasOutput:     hasOutput,
		Intent:        IntentPending,
		Signals:       []string{},
		Summary:       []string{},
	}
	if hasOutput {
		l.Qualified = asBool(output["qualified"])
		l.Intent = asString(output["intent"], IntentUnknown)
		l.Confidence = asFloat(output["confidence"])
		l.Signals = asStringSlice(output["signals"])
		l.Summary = asStringSlice(output["summary"])
	}
	return l
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// stringify renders a scalar sessionId as a string; absent values
// become "" rather than a formatted nil.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprint(v)
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asOptString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// asCount is asFloat truncated to a non-negative int.
func asCount(v any) int {
	n := int(asFloat(v))
	if n < 0 {
		return 0
	}
	return n
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if s, ok := it.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(it))
	}
	return out
}
