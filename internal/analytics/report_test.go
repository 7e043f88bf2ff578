package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/company-match/internal/model"
)

func TestCollect(t *testing.T) {
	batch := model.CrawlBatch{
		ID: "batch-1",
		Records: []model.CrawledRecord{
			{Domain: "a.com", Success: true, PhoneNumbers: []string{"555-0000"}, Address: "1 Main St"},
			{Domain: "b.com", Success: true, SocialLinks: model.SocialLinks{Facebook: "https://facebook.com/b"}},
			{Domain: "c.com", Success: true, SocialLinks: model.SocialLinks{Other: []string{"https://tiktok.com/@c"}}},
			{Domain: "d.com", Success: false, Error: "timeout"},
		},
		Duration: 1500 * time.Millisecond,
	}

	rep := Collect(batch)
	assert.Equal(t, "batch-1", rep.BatchID)
	assert.Equal(t, 4, rep.TotalWebsites)
	assert.Equal(t, 3, rep.SuccessfullyCrawled)
	assert.InDelta(t, 75.0, rep.CoveragePercentage, 1e-9)
	assert.InDelta(t, 25.0, rep.FillRates.PhoneNumbers, 1e-9)
	assert.InDelta(t, 50.0, rep.FillRates.SocialMedia, 1e-9)
	assert.InDelta(t, 25.0, rep.FillRates.Address, 1e-9)
	assert.Equal(t, int64(1500), rep.TotalProcessingTimeMS)
	assert.False(t, rep.CollectedAt.IsZero())
}

func TestCollect_EmptyBatch(t *testing.T) {
	rep := Collect(model.CrawlBatch{})
	assert.Equal(t, 0, rep.TotalWebsites)
	assert.Zero(t, rep.CoveragePercentage)
	assert.Equal(t, FillRates{}, rep.FillRates)
}

func TestCollect_EmptyOtherListIsNotSocial(t *testing.T) {
	rep := Collect(model.CrawlBatch{Records: []model.CrawledRecord{
		{Domain: "a.com", Success: true, SocialLinks: model.SocialLinks{Other: []string{""}}},
		{Domain: "b.com", Success: true, SocialLinks: model.SocialLinks{Other: []string{}}},
	}})
	assert.Zero(t, rep.FillRates.SocialMedia)
	assert.InDelta(t, 100.0, rep.CoveragePercentage, 1e-9)
}
