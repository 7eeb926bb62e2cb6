// Package store provides read access to the lead document collection.
// Stored documents are heterogeneous — sessionId in particular may be a
// string, an integer, or a garbled digit sequence — so point lookups go
// through a layered resolution cascade rather than a single equality
// query.
package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound is returned when the session resolution cascade exhausts
// every strategy without a match.
var ErrNotFound = eris.New("store: lead not found")

// Bounded scan windows. Large collections are silently truncated to
// these limits, matching the upstream dashboard's behavior.
const (
	// ResolveScanLimit bounds the resolver's brute-force fallback scan.
	ResolveScanLimit = 200
	// ListScanLimit bounds the raw fetch behind the list endpoint.
	ListScanLimit = 500
	// StatsScanLimit bounds the aggregate scan.
	StatsScanLimit = 1000
	// HealthSampleLimit bounds the analysed-document sample in health.
	HealthSampleLimit = 500
)

// ScanQuery describes a bounded collection scan.
type ScanQuery struct {
	// SessionDigits, when non-empty, restricts the scan to documents
	// whose sessionId contains the digit sequence as a substring.
	SessionDigits string
	// SortField, when non-empty, orders the scan by this field.
	SortField string
	// Descending inverts the sort order.
	Descending bool
	// Limit caps the number of documents returned.
	Limit int64
}

// Store is the read-only view of the lead collection.
type Store interface {
	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error
	// Count returns the total number of documents in the collection.
	Count(ctx context.Context) (int64, error)
	// FindBySession resolves a caller-supplied session identifier to a
	// raw document, or ErrNotFound.
	FindBySession(ctx context.Context, sessionID string) (bson.M, error)
	// Scan returns up to q.Limit raw documents matching q.
	Scan(ctx context.Context, q ScanQuery) ([]bson.M, error)
	// Close releases the underlying connections.
	Close(ctx context.Context) error
}

// Digits returns the decimal digit characters of s, in order.
// An empty result means s carries no numeric component.
func Digits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
