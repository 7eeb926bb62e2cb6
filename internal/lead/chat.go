package lead

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ExtractChat pulls the ordered transcript out of a raw document.
// Entries that are not documents are skipped; entries whose resolved
// content is empty are dropped. Returns an empty slice when the
// messages field is absent or not an array.
func ExtractChat(doc bson.M) []ChatMessage {
	m := asMap(Sanitize(doc))
	messages, ok := m["messages"].([]any)
	if !ok {
		return []ChatMessage{}
	}

	chat := make([]ChatMessage, 0, len(messages))
	for _, entry := range messages {
		em, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		msgType := asString(em["type"], "unknown")
		var content string
		switch data := em["data"].(type) {
		case map[string]any:
			content = stringifyContent(data["content"])
		case string:
			content = data
		}
		if content == "" {
			continue
		}
		chat = append(chat, ChatMessage{Type: msgType, Content: content})
	}
	return chat
}

// stringifyContent renders message content, treating falsy values
// (nil, zero numbers, false, empty containers) as absent.
func stringifyContent(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64, float32, int, int32, int64:
		if asFloat(t) == 0 {
			return ""
		}
		return fmt.Sprint(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
