// Package lead converts raw chat-analysis documents into canonical,
// fully-populated projections. Stored documents are loosely typed —
// fields may be absent, null, or carry the wrong scalar type — so every
// conversion here is total: malformed input resolves to a documented
// default, never an error.
package lead

// Intent values reported for leads without analysis output.
const (
	IntentPending = "PENDING"
	IntentUnknown = "UNKNOWN"
)

// Lead is the canonical flattened view of one chat session's
// qualification analysis. Every field is always populated.
type Lead struct {
	SessionID     string   `json:"sessionId" yaml:"session_id"`
	MessageLength int      `json:"messageLength" yaml:"message_length"`
	AnalysedAt    *string  `json:"analysedAt" yaml:"analysed_at"`
	LeadAnalysed  bool     `json:"leadAnalysed" yaml:"lead_analysed"`
	HasOutput     bool     `json:"hasOutput" yaml:"has_output"`
	Qualified     bool     `json:"qualified" yaml:"qualified"`
	Intent        string   `json:"intent" yaml:"intent"`
	Confidence    float64  `json:"confidence" yaml:"confidence"`
	Signals       []string `json:"signals" yaml:"signals"`
	Summary       []string `json:"summary" yaml:"summary"`
}

// ChatMessage is one transcript entry with non-empty content.
type ChatMessage struct {
	Type    string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
}
