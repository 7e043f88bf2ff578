package company

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-match/internal/index"
	"github.com/sells-group/company-match/internal/match"
	"github.com/sells-group/company-match/internal/model"
)

type stubCrawler struct {
	batch   *model.CrawlBatch
	err     error
	domains []string
}

func (s *stubCrawler) Crawl(_ context.Context, domains []string) (*model.CrawlBatch, error) {
	s.domains = domains
	return s.batch, s.err
}

func testService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(match.DefaultPolicy(), WithBulkConcurrency(4))
	svc.Load([]model.CompanyRecord{
		{Domain: "acme.com", CommercialName: "Acme Inc"},
		{Domain: "widgets.io", CommercialName: "Widgets LLC", PhoneNumbers: []string{"555-123-4567"}},
	})
	return svc
}

func TestService_NotReady(t *testing.T) {
	svc := NewService(match.DefaultPolicy())

	_, err := svc.Resolve(model.MatchQuery{Name: "Acme"})
	assert.True(t, errors.Is(err, index.ErrNotReady))

	_, err = svc.Fuse(&model.CrawlBatch{})
	assert.True(t, errors.Is(err, index.ErrNotReady))

	_, err = svc.BulkResolve(context.Background(), []model.MatchQuery{{Name: "Acme"}})
	assert.True(t, errors.Is(err, index.ErrNotReady))

	_, err = svc.Crawl(context.Background(), &stubCrawler{}, []string{"acme.com"})
	assert.True(t, errors.Is(err, index.ErrNotReady))

	_, err = svc.GetByDomain("acme.com")
	assert.True(t, errors.Is(err, index.ErrNotReady))

	_, err = svc.All()
	assert.True(t, errors.Is(err, index.ErrNotReady))

	assert.Equal(t, Stats{}, svc.Stats())
	assert.Equal(t, Status{}, svc.Status())
	assert.Nil(t, svc.Analytics())
}

func TestService_FuseMakesPhoneResolvable(t *testing.T) {
	svc := testService(t)

	res, err := svc.Resolve(model.MatchQuery{Phone: "555-0000"})
	require.NoError(t, err)
	if res != nil {
		assert.NotEqual(t, match.StrategyExactPhone, res.Strategy)
	}

	report, err := svc.Fuse(&model.CrawlBatch{
		ID: "b1",
		Records: []model.CrawledRecord{
			{Domain: "acme.com", Success: true, PhoneNumbers: []string{"555-0000"}},
		},
		Duration: time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "b1", report.BatchID)

	rec, err := svc.GetByDomain("acme.com")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"555-0000"}, rec.PhoneNumbers)

	res, err = svc.Resolve(model.MatchQuery{Phone: "555-0000"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "acme.com", res.Company.Domain)
	assert.Equal(t, match.StrategyExactPhone, res.Strategy)
	assert.Equal(t, 0.95, res.MatchScore.Score)
}

func TestService_StatusAfterFuse(t *testing.T) {
	svc := testService(t)

	st := svc.Status()
	assert.True(t, st.Initialized)
	assert.Equal(t, 2, st.CompaniesCount)
	assert.Zero(t, st.ScrapedDataCount)
	assert.False(t, st.AnalyticsAvailable)
	assert.Equal(t, 2, st.IndexStats.TotalCompanies)
	assert.True(t, st.IndexStats.Indexed)
	assert.False(t, st.IndexStats.BuiltAt.IsZero())
	assert.Equal(t, st.IndexStats, svc.Stats())
	loadedAt := st.IndexStats.BuiltAt

	_, err := svc.Fuse(&model.CrawlBatch{Records: []model.CrawledRecord{
		{Domain: "acme.com", Success: true},
		{Domain: "nowhere.org", Success: false},
	}})
	require.NoError(t, err)

	st = svc.Status()
	assert.Equal(t, 2, st.ScrapedDataCount)
	assert.True(t, st.AnalyticsAvailable)
	assert.False(t, st.IndexStats.BuiltAt.Before(loadedAt), "fuse publishes a rebuilt index")
	require.NotNil(t, svc.Analytics())
	assert.InDelta(t, 50.0, svc.Analytics().CoveragePercentage, 1e-9)
}

func TestService_Crawl(t *testing.T) {
	svc := testService(t)
	crawler := &stubCrawler{batch: &model.CrawlBatch{Records: []model.CrawledRecord{
		{Domain: "widgets.io", Success: true, Address: "1 Main St"},
	}}}

	report, err := svc.Crawl(context.Background(), crawler, []string{"widgets.io"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalWebsites)
	assert.Equal(t, []string{"widgets.io"}, crawler.domains)

	rec, err := svc.GetByDomain("widgets.io")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", rec.Address)
}

func TestService_CrawlError(t *testing.T) {
	svc := testService(t)
	_, err := svc.Crawl(context.Background(), &stubCrawler{err: errors.New("boom")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, svc.Status().AnalyticsAvailable)
}

func TestService_BulkResolve(t *testing.T) {
	svc := testService(t)
	queries := []model.MatchQuery{
		{Website: "acme.com"},
		{Name: "Zzyzx Qwerty"},
		{Phone: "(555) 123-4567"},
		{},
	}

	report, err := svc.BulkResolve(context.Background(), queries)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.MatchedCount)
	assert.InDelta(t, 50.0, report.MatchRate, 1e-9)
	require.Len(t, report.Results, 4)

	for i, r := range report.Results {
		assert.Equal(t, queries[i], r.Input)
	}
	assert.True(t, report.Results[0].Found)
	assert.Equal(t, "acme.com", report.Results[0].Match.Company.Domain)
	assert.False(t, report.Results[1].Found)
	assert.Nil(t, report.Results[1].Match)
	assert.Equal(t, "widgets.io", report.Results[2].Match.Company.Domain)
	assert.False(t, report.Results[3].Found)

	sum := report.Summary(3)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.MatchedCount)
	require.Len(t, sum.SampleResults, 3)
	assert.True(t, sum.SampleResults[0].MatchFound)
	require.NotNil(t, sum.SampleResults[0].MatchScore)
	assert.InDelta(t, 1.0, *sum.SampleResults[0].MatchScore, 1e-9)
	assert.Equal(t, model.ConfidenceHigh, sum.SampleResults[0].MatchConfidence)
	assert.Contains(t, sum.SampleResults[0].MatchedFields, model.FieldDomain)
	assert.False(t, sum.SampleResults[1].MatchFound)
	assert.Nil(t, sum.SampleResults[1].MatchScore)
	assert.Empty(t, sum.SampleResults[1].MatchedFields)

	assert.Len(t, report.Summary(50).SampleResults, 4)
	assert.Empty(t, report.Summary(-1).SampleResults)
}

func TestService_BulkResolveEmpty(t *testing.T) {
	report, err := testService(t).BulkResolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.MatchRate)
}

func TestService_BulkResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testService(t).BulkResolve(ctx, []model.MatchQuery{{Website: "acme.com"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_AllReturnsCopy(t *testing.T) {
	svc := testService(t)
	all, err := svc.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	all[1].PhoneNumbers[0] = "changed"

	rec, err := svc.GetByDomain("widgets.io")
	require.NoError(t, err)
	assert.Equal(t, "555-123-4567", rec.PhoneNumbers[0])

	rec, err = svc.GetByDomain("missing.com")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestService_ConcurrentResolveDuringFuse(t *testing.T) {
	svc := testService(t)
	batch := &model.CrawlBatch{Records: []model.CrawledRecord{
		{Domain: "acme.com", Success: true, PhoneNumbers: []string{"555-0000"}},
	}}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				res, err := svc.Resolve(model.MatchQuery{Website: "acme.com"})
				assert.NoError(t, err)
				if assert.NotNil(t, res) {
					assert.Equal(t, "acme.com", res.Company.Domain)
				}
			}
		}()
	}
	for range 5 {
		_, err := svc.Fuse(batch)
		require.NoError(t, err)
	}
	wg.Wait()

	rec, err := svc.GetByDomain("acme.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"555-0000"}, rec.PhoneNumbers)
}
