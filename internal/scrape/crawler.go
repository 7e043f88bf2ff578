package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/company-match/internal/model"
	"github.com/sells-group/company-match/internal/resilience"
)

// CrawlerOptions configures a Crawler. Zero values take defaults.
type CrawlerOptions struct {
	// BatchSize is how many domains are fetched in parallel. A batch is fully
	// collected before the next one starts.
	BatchSize int
	// PageTimeout bounds one page fetch.
	PageTimeout time.Duration
	// RatePerSec caps fetch starts across all workers. Zero disables the cap.
	RatePerSec float64
	// Retries is how many times a transient fetch failure is retried within
	// the page timeout.
	Retries int
}

// Crawler visits domains in fixed-width batches and extracts contact data.
type Crawler struct {
	fetcher     Fetcher
	batchSize   int
	pageTimeout time.Duration
	limiter     *rate.Limiter
	backoff     resilience.Backoff
}

// NewCrawler creates a Crawler over f.
func NewCrawler(f Fetcher, opts CrawlerOptions) *Crawler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 10 * time.Second
	}
	c := &Crawler{
		fetcher:     f,
		batchSize:   opts.BatchSize,
		pageTimeout: opts.PageTimeout,
		backoff:     resilience.NoRetry,
	}
	if opts.Retries > 0 {
		c.backoff = resilience.PageBackoff(opts.Retries)
	}
	if opts.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.BatchSize)
	}
	return c
}

// Crawl fetches every domain and returns one record per domain in input
// order. Per-site failures are recorded on the record; only cancellation of
// ctx fails the whole crawl.
func (c *Crawler) Crawl(ctx context.Context, domains []string) (*model.CrawlBatch, error) {
	start := time.Now()
	batch := &model.CrawlBatch{
		ID:      uuid.NewString(),
		Records: make([]model.CrawledRecord, len(domains)),
	}
	log := zap.L().With(zap.String("batch_id", batch.ID))

	for lo := 0; lo < len(domains); lo += c.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scrape: crawl cancelled")
		}
		hi := min(lo+c.batchSize, len(domains))

		var g errgroup.Group
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				batch.Records[i] = c.crawlOne(ctx, domains[i])
				return nil
			})
		}
		_ = g.Wait()

		log.Info("scrape: batch complete",
			zap.Int("processed", hi),
			zap.Int("total", len(domains)),
		)
	}

	batch.Duration = time.Since(start)
	return batch, nil
}

func (c *Crawler) crawlOne(ctx context.Context, domain string) model.CrawledRecord {
	start := time.Now()
	rec := model.CrawledRecord{Domain: domain}

	if err := c.scrape(ctx, domain, &rec); err != nil {
		rec.Error = err.Error()
		zap.L().Warn("scrape: failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
	} else {
		rec.Success = true
	}

	rec.DurationMS = time.Since(start).Milliseconds()
	return rec
}

func (c *Crawler) scrape(ctx context.Context, domain string, rec *model.CrawledRecord) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "scrape: rate limit")
		}
	}

	pageCtx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	page, err := resilience.Retry(pageCtx, c.backoff, "fetch "+domain, func(ctx context.Context) (*Page, error) {
		return c.fetcher.Fetch(ctx, TargetURL(domain))
	})
	if err != nil {
		return err
	}
	ex, err := Extract(page.Body)
	if err != nil {
		return err
	}

	rec.PhoneNumbers = ex.PhoneNumbers
	rec.SocialLinks = ex.SocialLinks
	rec.Address = ex.Address
	return nil
}

// TargetURL prefixes https:// to a bare domain.
func TargetURL(domain string) string {
	d := strings.TrimSpace(domain)
	if strings.HasPrefix(strings.ToLower(d), "http") {
		return d
	}
	return "https://" + d
}
