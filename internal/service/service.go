// Package service implements the query, lookup, and aggregation
// operations exposed by the API and CLI. It is a thin layer over the
// store and the lead normalizer: every operation fetches raw documents,
// flattens them, and filters or aggregates in memory.
package service

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-api/internal/lead"
	"github.com/sells-group/lead-api/internal/store"
)

// List pagination bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListQuery holds the list endpoint's filter, sort, and pagination
// parameters. Limit and Skip are assumed pre-validated by the caller.
type ListQuery struct {
	// Search is free text; only its digit sequence is used, as a
	// substring filter on sessionId at the store level.
	Search string
	// Intent filters flattened leads by intent, case-insensitively.
	Intent string
	// Qualified, when non-nil, filters by qualification outcome.
	Qualified *bool
	// SortAsc orders by analysedAt ascending instead of descending.
	SortAsc bool
	Skip    int
	Limit   int
}

// ListResult is one page of analysed leads.
type ListResult struct {
	Leads   []lead.Lead `json:"leads"`
	Total   int         `json:"total"`
	Skip    int         `json:"skip"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"hasMore"`
}

// Detail is a single flattened lead with its transcript attached.
type Detail struct {
	lead.Lead `yaml:",inline"`
	Chat      []lead.ChatMessage `json:"chat" yaml:"chat"`
}

// Stats aggregates the analysed portion of the collection.
type Stats struct {
	Total             int            `json:"total" yaml:"total"`
	Qualified         int            `json:"qualified" yaml:"qualified"`
	NotQualified      int            `json:"notQualified" yaml:"not_qualified"`
	QualificationRate float64        `json:"qualificationRate" yaml:"qualification_rate"`
	AvgConfidence     float64        `json:"avgConfidence" yaml:"avg_confidence"`
	AvgMessages       float64        `json:"avgMessages" yaml:"avg_messages"`
	IntentBreakdown   map[string]int `json:"intentBreakdown" yaml:"intent_breakdown"`
}

// Health reports store connectivity and collection coverage.
type Health struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	Collection     string `json:"collection"`
	TotalDocuments int64  `json:"totalDocuments"`
	WithAnalysis   int    `json:"withAnalysis"`
}

// Service executes lead queries against a Store.
type Service struct {
	store      store.Store
	database   string
	collection string
}

// New creates a Service. The database and collection names are only
// echoed in health responses.
func New(st store.Store, database, collection string) *Service {
	return &Service{store: st, database: database, collection: collection}
}

// List returns one page of analysed leads. Pending leads (no output)
// never appear in list results. The raw fetch is bounded, so Total
// reflects the post-filter count within that window only.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	docs, err := s.store.Scan(ctx, store.ScanQuery{
		SessionDigits: store.Digits(q.Search),
		SortField:     "analysedAt",
		Descending:    !q.SortAsc,
		Limit:         store.ListScanLimit,
	})
	if err != nil {
		return nil, err
	}

	matched := make([]lead.Lead, 0, len(docs))
	for _, doc := range docs {
		l := lead.Flatten(doc)
		if !l.HasOutput {
			continue
		}
		if q.Intent != "" && !strings.EqualFold(l.Intent, q.Intent) {
			continue
		}
		if q.Qualified != nil && l.Qualified != *q.Qualified {
			continue
		}
		matched = append(matched, l)
	}

	total := len(matched)
	start := min(q.Skip, total)
	end := min(q.Skip+q.Limit, total)

	return &ListResult{
		Leads:   matched[start:end],
		Total:   total,
		Skip:    q.Skip,
		Limit:   q.Limit,
		HasMore: q.Skip+q.Limit < total,
	}, nil
}

// Get resolves a session identifier and returns the flattened lead with
// its chat transcript. Returns store.ErrNotFound when the resolution
// cascade exhausts every strategy.
func (s *Service) Get(ctx context.Context, sessionID string) (*Detail, error) {
	doc, err := s.store.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Lead: lead.Flatten(doc),
		Chat: lead.ExtractChat(doc),
	}, nil
}

// Stats aggregates up to store.StatsScanLimit documents. Pending leads
// are excluded from every figure. An all-pending or empty collection
// yields the explicit zero shape.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	docs, err := s.store.Scan(ctx, store.ScanQuery{Limit: store.StatsScanLimit})
	if err != nil {
		return nil, err
	}

	st := &Stats{IntentBreakdown: map[string]int{}}
	var confidenceSum, messageSum float64
	for _, doc := range docs {
		l := lead.Flatten(doc)
		if !l.HasOutput {
			continue
		}
		st.Total++
		if l.Qualified {
			st.Qualified++
		}
		confidenceSum += l.Confidence
		messageSum += float64(l.MessageLength)
		st.IntentBreakdown[l.Intent]++
	}

	if st.Total == 0 {
		return st, nil
	}
	st.NotQualified = st.Total - st.Qualified
	st.QualificationRate = round(float64(st.Qualified)/float64(st.Total), 3)
	st.AvgConfidence = round(confidenceSum/float64(st.Total), 3)
	st.AvgMessages = round(messageSum/float64(st.Total), 1)
	return st, nil
}

// Health pings the store, then counts documents and samples analysed
// coverage concurrently.
func (s *Service) Health(ctx context.Context) (*Health, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, err
	}

	var (
		total        int64
		withAnalysis int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx)
		total = n
		return err
	})
	g.Go(func() error {
		docs, err := s.store.Scan(gctx, store.ScanQuery{Limit: store.HealthSampleLimit})
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if lead.Flatten(doc).HasOutput {
				withAnalysis++
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Health{
		Status:         "ok",
		Database:       s.database,
		Collection:     s.collection,
		TotalDocuments: total,
		WithAnalysis:   withAnalysis,
	}, nil
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
