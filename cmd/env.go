package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/analytics"
	"github.com/sells-group/company-match/internal/company"
	"github.com/sells-group/company-match/internal/config"
	"github.com/sells-group/company-match/internal/loader"
	"github.com/sells-group/company-match/internal/scrape"
)

// sampleSize is how many flattened results a bulk summary shows.
const sampleSize = 10

// matchEnv holds the components shared by every command.
type matchEnv struct {
	Config  *config.Config
	Service *company.Service
	Crawler company.Crawler
}

// newEnv validates the config for every mode and builds the service and
// crawler. The catalog is not loaded yet.
func newEnv(c *config.Config, modes ...string) (*matchEnv, error) {
	for _, mode := range modes {
		if err := c.Validate(mode); err != nil {
			return nil, err
		}
	}
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}

	svc := company.NewService(policy, company.WithBulkConcurrency(c.Match.BulkConcurrency))
	fetcher := scrape.NewLocalFetcher(c.Crawl.FetcherOptions())
	return &matchEnv{
		Config:  c,
		Service: svc,
		Crawler: scrape.NewCrawler(fetcher, c.Crawl.CrawlerOptions()),
	}, nil
}

// initEnv builds the environment and loads the catalog.
func initEnv(ctx context.Context, modes ...string) (*matchEnv, error) {
	env, err := newEnv(cfg, modes...)
	if err != nil {
		return nil, err
	}
	if err := env.loadCatalog(ctx); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *matchEnv) loadCatalog(ctx context.Context) error {
	records, err := loader.LoadCompanies(ctx, e.Config.Data.CompaniesPath)
	if err != nil {
		return eris.Wrap(err, "load catalog")
	}
	e.Service.Load(records)
	return nil
}

// crawlWebsites crawls the configured websites list and fuses the results.
func (e *matchEnv) crawlWebsites(ctx context.Context) (*analytics.Report, error) {
	domains, err := loader.LoadWebsites(ctx, e.Config.Data.WebsitesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load websites")
	}
	report, err := e.Service.Crawl(ctx, e.Crawler, domains)
	if err != nil {
		return nil, err
	}
	zap.L().Info("crawl fused into catalog",
		zap.String("batch_id", report.BatchID),
		zap.Int("websites", report.TotalWebsites),
		zap.Float64("coverage", report.CoveragePercentage),
	)
	return report, nil
}

// runSample bulk-resolves the configured query sample. A positive limit caps
// the number of queries.
func (e *matchEnv) runSample(ctx context.Context, limit int) (*company.BulkReport, error) {
	queries, err := loader.LoadQueries(ctx, e.Config.Data.QueriesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load queries")
	}
	if limit > 0 && limit < len(queries) {
		queries = queries[:limit]
	}
	return e.Service.BulkResolve(ctx, queries)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
