package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection answers FindOne/Find against an in-memory slice,
// understanding the three filter shapes the store issues: exact value,
// $regex on strings, and the empty filter.
type fakeCollection struct {
	docs []bson.M

	findOneFilters []bson.M
	findFilters    []bson.M
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	fm := filter.(bson.M)
	f.findOneFilters = append(f.findOneFilters, fm)
	for _, d := range f.docs {
		if f.matches(fm, d) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeCollection) Find(_ context.Context, filter any, _ ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	fm := filter.(bson.M)
	f.findFilters = append(f.findFilters, fm)
	matched := make([]any, 0, len(f.docs))
	for _, d := range f.docs {
		if f.matches(fm, d) {
			matched = append(matched, d)
		}
	}
	return mongo.NewCursorFromDocuments(matched, nil, nil)
}

func (f *fakeCollection) CountDocuments(_ context.Context, _ any, _ ...options.Lister[options.CountOptions]) (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeCollection) matches(filter, d bson.M) bool {
	want, ok := filter["sessionId"]
	if !ok {
		return true
	}
	if cond, ok := want.(bson.M); ok {
		pattern, _ := cond["$regex"].(string)
		s, isString := d["sessionId"].(string)
		return isString && strings.Contains(s, pattern)
	}
	return d["sessionId"] == want
}

func newTestStore(docs ...bson.M) (*Mongo, *fakeCollection) {
	col := &fakeCollection{docs: docs}
	return &Mongo{col: col}, col
}

func TestFindBySessionExactStringWinsOverSubstring(t *testing.T) {
	// 4299 contains "42" as a substring, but the exact string match
	// must take precedence.
	m, col := newTestStore(
		bson.M{"sessionId": int64(4299), "tag": "loose"},
		bson.M{"sessionId": "42", "tag": "exact"},
	)

	doc, err := m.FindBySession(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "exact", doc["tag"])
	require.Len(t, col.findOneFilters, 1)
	assert.Equal(t, bson.M{"sessionId": "42"}, col.findOneFilters[0])
}

func TestFindBySessionNumericFallback(t *testing.T) {
	m, _ := newTestStore(bson.M{"sessionId": int64(5551234), "tag": "phone"})

	doc, err := m.FindBySession(context.Background(), "555-1234")
	require.NoError(t, err)
	assert.Equal(t, "phone", doc["tag"])
}

func TestFindBySessionSubstringFallback(t *testing.T) {
	m, _ := newTestStore(bson.M{"sessionId": "lead-555999-web", "tag": "garbled"})

	doc, err := m.FindBySession(context.Background(), "555999")
	require.NoError(t, err)
	assert.Equal(t, "garbled", doc["tag"])
}

func TestFindBySessionScanFallbackOnIntegerSubstring(t *testing.T) {
	// The digit sequence is a substring of an integer sessionId: the
	// indexed strategies all miss (regex only sees strings), so only
	// the stringifying scan can find it.
	m, col := newTestStore(bson.M{"sessionId": int64(5551234567), "tag": "scanned"})

	doc, err := m.FindBySession(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, "scanned", doc["tag"])
	require.Len(t, col.findFilters, 1)
	assert.Equal(t, bson.M{}, col.findFilters[0])
}

func TestFindBySessionExhaustionReturnsNotFound(t *testing.T) {
	m, _ := newTestStore(
		bson.M{"sessionId": "abc"},
		bson.M{"sessionId": int64(777)},
	)

	_, err := m.FindBySession(context.Background(), "00042")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindBySessionNoDigitsSkipsNumericStrategies(t *testing.T) {
	m, col := newTestStore(bson.M{"sessionId": "visitor-token", "tag": "plain"})

	doc, err := m.FindBySession(context.Background(), "visitor-token")
	require.NoError(t, err)
	assert.Equal(t, "plain", doc["tag"])

	_, err = m.FindBySession(context.Background(), "no-digits-here")
	assert.ErrorIs(t, err, ErrNotFound)
	// Only the exact-string findOne per lookup; integer and substring
	// strategies never ran.
	assert.Len(t, col.findOneFilters, 2)
}

func TestFindBySessionTrimsInput(t *testing.T) {
	m, _ := newTestStore(bson.M{"sessionId": "42", "tag": "exact"})

	doc, err := m.FindBySession(context.Background(), "  42  ")
	require.NoError(t, err)
	assert.Equal(t, "exact", doc["tag"])
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "5551234", Digits("555-1234"))
	assert.Equal(t, "", Digits("no digits"))
	assert.Equal(t, "42", Digits(" 4 2 "))
}
