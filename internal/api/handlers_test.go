package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sells-group/lead-api/internal/config"
	"github.com/sells-group/lead-api/internal/service"
	"github.com/sells-group/lead-api/internal/store"
)

type fakeStore struct {
	docs    []bson.M
	pingErr error
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Count(context.Context) (int64, error) { return int64(len(f.docs)), nil }

func (f *fakeStore) FindBySession(_ context.Context, sessionID string) (bson.M, error) {
	for _, d := range f.docs {
		if d["sessionId"] == sessionID {
			return d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) Scan(context.Context, store.ScanQuery) ([]bson.M, error) {
	return f.docs, nil
}

func (f *fakeStore) Close(context.Context) error { return nil }

func testRouter(fs *fakeStore) http.Handler {
	svc := service.New(fs, "test", "customerChats")
	return Router(svc, config.ServerConfig{CORSOrigins: []string{"*"}})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), into))
}

func analysedDoc(sessionID string) bson.M {
	return bson.M{
		"sessionId":     sessionID,
		"messageLength": int32(4),
		"output":        bson.M{"qualified": true, "intent": "BUY", "confidence": 0.9},
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(&fakeStore{docs: []bson.M{analysedDoc("1"), {"sessionId": "2"}}})

	rr := get(t, h, "/api/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	decode(t, rr, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["database"])
	assert.Equal(t, "customerChats", body["collection"])
	assert.EqualValues(t, 2, body["totalDocuments"])
	assert.EqualValues(t, 1, body["withAnalysis"])
}

func TestHealthEndpointStoreDown(t *testing.T) {
	h := testRouter(&fakeStore{pingErr: eris.New("connection refused")})

	rr := get(t, h, "/api/health")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	decode(t, rr, &body)
	assert.Contains(t, body["error"], "connection refused")
}

func TestListLeadsEndpoint(t *testing.T) {
	h := testRouter(&fakeStore{docs: []bson.M{
		analysedDoc("1"),
		analysedDoc("2"),
		{"sessionId": "pending"},
	}})

	rr := get(t, h, "/api/leads?limit=1")

	assert.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Leads   []map[string]any `json:"leads"`
		Total   int              `json:"total"`
		Skip    int              `json:"skip"`
		Limit   int              `json:"limit"`
		HasMore bool             `json:"hasMore"`
	}
	decode(t, rr, &body)
	assert.Len(t, body.Leads, 1)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.Limit)
	assert.True(t, body.HasMore)
}

func TestListLeadsParamValidation(t *testing.T) {
	h := testRouter(&fakeStore{})

	for name, path := range map[string]string{
		"bad sort":      "/api/leads?sort=upward",
		"bad qualified": "/api/leads?qualified=maybe",
		"negative skip": "/api/leads?skip=-1",
		"zero limit":    "/api/leads?limit=0",
		"huge limit":    "/api/leads?limit=201",
		"nan skip":      "/api/leads?skip=x",
	} {
		t.Run(name, func(t *testing.T) {
			rr := get(t, h, path)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestGetLeadEndpoint(t *testing.T) {
	doc := analysedDoc("42")
	doc["messages"] = bson.A{bson.M{"type": "human", "data": bson.M{"content": "hi"}}}
	h := testRouter(&fakeStore{docs: []bson.M{doc}})

	rr := get(t, h, "/api/leads/42")

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	decode(t, rr, &body)
	assert.Equal(t, "42", body["sessionId"])
	assert.Equal(t, "BUY", body["intent"])
	chat, ok := body["chat"].([]any)
	require.True(t, ok)
	require.Len(t, chat, 1)
}

func TestGetLeadNotFound(t *testing.T) {
	h := testRouter(&fakeStore{})

	rr := get(t, h, "/api/leads/9999")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body map[string]string
	decode(t, rr, &body)
	assert.Equal(t, "Lead '9999' not found", body["error"])
}

func TestStatsEndpointZeroShape(t *testing.T) {
	h := testRouter(&fakeStore{})

	rr := get(t, h, "/api/stats")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"total": 0, "qualified": 0, "notQualified": 0,
		"qualificationRate": 0, "avgConfidence": 0,
		"avgMessages": 0, "intentBreakdown": {}
	}`, rr.Body.String())
}

func TestDashboardServed(t *testing.T) {
	h := testRouter(&fakeStore{})

	rr := get(t, h, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Lead Qualification Dashboard")
}

func TestRequestIDHeader(t *testing.T) {
	h := testRouter(&fakeStore{})

	rr := get(t, h, "/api/stats")

	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestThrottle(t *testing.T) {
	svc := service.New(&fakeStore{}, "test", "customerChats")
	h := Router(svc, config.ServerConfig{
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	})

	first := get(t, h, "/api/stats")
	assert.Equal(t, http.StatusOK, first.Code)

	second := get(t, h, "/api/stats")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
