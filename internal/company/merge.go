package company

import (
	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/model"
	"github.com/sells-group/company-match/internal/normalize"
)

// PreferExisting keeps existing unless it is empty.
func PreferExisting(existing, scraped string) string {
	if existing != "" {
		return existing
	}
	return scraped
}

// MergeSocialLinks fills each platform independently, keeping the existing
// link when present. The other list is existing then scraped, deduplicated.
func MergeSocialLinks(existing, scraped model.SocialLinks) model.SocialLinks {
	out := model.SocialLinks{}
	for _, p := range model.Platforms {
		out.Set(p, PreferExisting(existing.Get(p), scraped.Get(p)))
	}
	out.Other = model.UnionStrings(existing.Other, scraped.Other)
	return out
}

// MergeCrawl returns rec with the crawled fields folded in. rec is not modified.
func MergeCrawl(rec model.CompanyRecord, crawled model.CrawledRecord) model.CompanyRecord {
	out := rec.Clone()
	out.PhoneNumbers = model.UnionStrings(rec.PhoneNumbers, crawled.PhoneNumbers)
	out.SocialLinks = MergeSocialLinks(rec.SocialLinks, crawled.SocialLinks)
	out.Address = PreferExisting(rec.Address, crawled.Address)
	out.Location = PreferExisting(rec.Location, crawled.Location)
	return out
}

// Fuse folds the successful records of a crawl batch into a copy of catalog.
// Crawled domains absent from the catalog are ignored; fusion never creates
// records. When a batch holds several successful records for one domain the
// last one wins. It returns the fused catalog and how many records changed.
func Fuse(catalog []model.CompanyRecord, batch []model.CrawledRecord) ([]model.CompanyRecord, int) {
	crawled := make(map[string]model.CrawledRecord, len(batch))
	for _, c := range batch {
		if !c.Success {
			continue
		}
		if d := normalize.Domain(c.Domain); d != "" {
			crawled[d] = c
		}
	}

	out := make([]model.CompanyRecord, len(catalog))
	fused := 0
	matched := make(map[string]struct{}, len(crawled))
	for i, rec := range catalog {
		d := normalize.Domain(rec.Domain)
		c, ok := crawled[d]
		if !ok {
			out[i] = rec.Clone()
			continue
		}
		matched[d] = struct{}{}
		out[i] = MergeCrawl(rec, c)
		fused++
	}

	if skipped := len(crawled) - len(matched); skipped > 0 {
		zap.L().Debug("fuse: crawled domains not in catalog", zap.Int("count", skipped))
	}
	return out, fused
}
