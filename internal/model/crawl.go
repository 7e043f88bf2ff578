package model

import "time"

// CrawledRecord is the result of scraping one domain. It is produced once per
// crawl pass and consumed once by fusion.
type CrawledRecord struct {
	Domain       string      `json:"domain"`
	PhoneNumbers []string    `json:"phone_numbers"`
	SocialLinks  SocialLinks `json:"social_media_links"`
	Address      string      `json:"address,omitempty"`
	Location     string      `json:"location,omitempty"`
	Success      bool        `json:"crawl_success"`
	DurationMS   int64       `json:"crawl_duration_ms"`
	Error        string      `json:"error_message,omitempty"`
}

// CrawlBatch is a fully collected crawl pass.
type CrawlBatch struct {
	ID       string          `json:"id"`
	Records  []CrawledRecord `json:"records"`
	Duration time.Duration   `json:"-"`
}
