// Package company owns the shared catalog and its index, and exposes the
// resolve, fuse and bulk operations over them.
package company

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/analytics"
	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/match"
	"github.com/sells-group/company-match/internal/model"
)

// Crawler fetches a batch of domains and returns the fully collected results.
type Crawler interface {
	Crawl(ctx context.Context, domains []string) (*model.CrawlBatch, error)
}

// Stats summarizes the index.
type Stats struct {
	TotalCompanies int       `json:"total_companies"`
	Indexed        bool      `json:"indexed"`
	BuiltAt        time.Time `json:"built_at"`
}

// Status summarizes the service.
type Status struct {
	Initialized        bool  `json:"initialized"`
	CompaniesCount     int   `json:"companies_count"`
	ScrapedDataCount   int   `json:"scraped_data_count"`
	AnalyticsAvailable bool  `json:"analytics_available"`
	IndexStats         Stats `json:"index_stats"`
}

// snapshot is one immutable generation of service state. Readers load it
// once per operation and never see a partially built generation.
type snapshot struct {
	ix      *index.Index
	report  *analytics.Report
	scraped int
}

// Service holds the current snapshot. Writers are serialized by mu and
// publish a fully built snapshot with a single atomic store.
type Service struct {
	policy          match.Policy
	bulkConcurrency int

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// Option configures a Service.
type Option func(*Service)

// WithBulkConcurrency bounds the number of concurrent resolutions in BulkResolve.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// NewService creates a service with no catalog loaded.
func NewService(policy match.Policy, opts ...Option) *Service {
	s := &Service{policy: policy, bulkConcurrency: 8}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Policy returns the match policy in use.
func (s *Service) Policy() match.Policy { return s.policy }

// current returns the published snapshot, or nil before the first Load.
func (s *Service) current() *snapshot {
	return s.snap.Load()
}

func (s *Service) currentIndex() *index.Index {
	if sn := s.current(); sn != nil {
		return sn.ix
	}
	return nil
}

// Load builds the index over records and publishes it, replacing any prior
// catalog together with its crawl state.
func (s *Service) Load(records []model.CompanyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ix := index.Build(records, s.policy.IndexOptions())
	s.snap.Store(&snapshot{ix: ix})

	zap.L().Info("company: catalog indexed",
		zap.Int("records", ix.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Fuse merges a crawl batch into the catalog and rebuilds the index before
// returning. The batch's analytics report is retained. It fails with
// index.ErrNotReady when no catalog has been loaded.
func (s *Service) Fuse(batch *model.CrawlBatch) (*analytics.Report, error) {
	if batch == nil {
		return nil, eris.New("company: nil crawl batch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	if cur == nil {
		return nil, index.ErrNotReady
	}
	records, err := cur.ix.Records()
	if err != nil {
		return nil, eris.Wrap(err, "company: fuse")
	}

	start := time.Now()
	fused, changed := Fuse(records, batch.Records)
	ix := index.Build(fused, s.policy.IndexOptions())
	report := analytics.Collect(*batch)

	s.snap.Store(&snapshot{
		ix:      ix,
		report:  report,
		scraped: len(batch.Records),
	})

	zap.L().Info("company: crawl fused",
		zap.String("batch_id", batch.ID),
		zap.Int("crawled", len(batch.Records)),
		zap.Int("fused", changed),
		zap.Int("records", ix.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// Crawl fetches domains with c and fuses the resulting batch.
func (s *Service) Crawl(ctx context.Context, c Crawler, domains []string) (*analytics.Report, error) {
	if s.current() == nil {
		return nil, index.ErrNotReady
	}
	batch, err := c.Crawl(ctx, domains)
	if err != nil {
		return nil, eris.Wrap(err, "company: crawl")
	}
	return s.Fuse(batch)
}

// Stats reports the catalog size and whether an index is published.
func (s *Service) Stats() Stats {
	ix := s.currentIndex()
	return Stats{TotalCompanies: ix.Len(), Indexed: ix != nil, BuiltAt: ix.BuiltAt()}
}

// Status reports the service state.
func (s *Service) Status() Status {
	sn := s.current()
	if sn == nil {
		return Status{}
	}
	return Status{
		Initialized:        true,
		CompaniesCount:     sn.ix.Len(),
		ScrapedDataCount:   sn.scraped,
		AnalyticsAvailable: sn.report != nil,
		IndexStats:         Stats{TotalCompanies: sn.ix.Len(), Indexed: true, BuiltAt: sn.ix.BuiltAt()},
	}
}

// Analytics returns the report of the last fused crawl, or nil.
func (s *Service) Analytics() *analytics.Report {
	if sn := s.current(); sn != nil {
		return sn.report
	}
	return nil
}

// GetByDomain returns a copy of the record with the given domain, or nil.
func (s *Service) GetByDomain(domain string) (*model.CompanyRecord, error) {
	rec, err := s.currentIndex().ByDomain(domain)
	if err != nil || rec == nil {
		return nil, err
	}
	out := rec.Clone()
	return &out, nil
}

// All returns a copy of the catalog in load order.
func (s *Service) All() ([]model.CompanyRecord, error) {
	records, err := s.currentIndex().Records()
	if err != nil {
		return nil, err
	}
	out := make([]model.CompanyRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out, nil
}
