// Package analytics aggregates crawl batches into coverage and fill-rate reports.
package analytics

import (
	"time"

	"github.com/sells-group/company-match/internal/model"
)

// Report is a point-in-time view of one crawl batch. Percentages are 0-100.
type Report struct {
	BatchID               string    `json:"batch_id,omitempty"`
	TotalWebsites         int       `json:"total_websites"`
	SuccessfullyCrawled   int       `json:"successfully_crawled"`
	CoveragePercentage    float64   `json:"coverage_percentage"`
	FillRates             FillRates `json:"fill_rates"`
	TotalProcessingTimeMS int64     `json:"total_processing_time_ms"`
	CollectedAt           time.Time `json:"collected_at"`
}

// FillRates are the share of records carrying each derived field.
type FillRates struct {
	PhoneNumbers float64 `json:"phone_numbers"`
	SocialMedia  float64 `json:"social_media"`
	Address      float64 `json:"address"`
}

// Collect computes the report for a batch. Fill rates are taken over every
// record in the batch, failed ones included. An empty batch reports zeros.
func Collect(batch model.CrawlBatch) *Report {
	rep := &Report{
		BatchID:               batch.ID,
		TotalWebsites:         len(batch.Records),
		TotalProcessingTimeMS: batch.Duration.Milliseconds(),
		CollectedAt:           time.Now().UTC(),
	}
	if rep.TotalWebsites == 0 {
		return rep
	}

	var phones, socials, addresses int
	for _, r := range batch.Records {
		if r.Success {
			rep.SuccessfullyCrawled++
		}
		if len(r.PhoneNumbers) > 0 {
			phones++
		}
		if hasSocialLink(r.SocialLinks) {
			socials++
		}
		if r.Address != "" {
			addresses++
		}
	}

	rep.CoveragePercentage = percent(rep.SuccessfullyCrawled, rep.TotalWebsites)
	rep.FillRates = FillRates{
		PhoneNumbers: percent(phones, rep.TotalWebsites),
		SocialMedia:  percent(socials, rep.TotalWebsites),
		Address:      percent(addresses, rep.TotalWebsites),
	}
	return rep
}

// hasSocialLink ignores an empty "other" list.
func hasSocialLink(s model.SocialLinks) bool {
	for _, p := range model.Platforms {
		if s.Get(p) != "" {
			return true
		}
	}
	for _, o := range s.Other {
		if o != "" {
			return true
		}
	}
	return false
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
