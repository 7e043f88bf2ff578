package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-match/internal/config"
	"github.com/sells-group/company-match/internal/model"
)

const (
	companiesCSV = `domain,company_commercial_name,company_legal_name,company_all_available_names
acme.com,Acme Widgets,Acme Widgets LLC,Acme Widgets | Acme
orbit.io,Orbit Labs,,Orbit Labs
bakery.test,Sunrise Bakery,,
`
	websitesCSV = "domain\nacme.com\norbit.io\n"
	queriesCSV  = `input name,input phone,input website,input_facebook
Acme Widgets,,,
,,orbit.io,
Qqqq Zzzz,,,
`
)

// setupWorkdir changes into a temp dir holding the sample files and a
// config.yaml pointing at them, then returns the loaded config.
func setupWorkdir(t *testing.T, websites string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("companies.csv", companiesCSV)
	write("websites.csv", websites)
	write("queries.csv", queriesCSV)
	write("config.yaml", `
log:
  level: error
data:
  companies_path: companies.csv
  websites_path: websites.csv
  queries_path: queries.csv
`)

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	c, err := config.Load()
	require.NoError(t, err)
	return c
}

// stubCrawler returns a fixed batch for any domain list.
type stubCrawler struct {
	batch *model.CrawlBatch
	err   error
	calls int
}

func (s *stubCrawler) Crawl(_ context.Context, domains []string) (*model.CrawlBatch, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func acmeBatch() *model.CrawlBatch {
	return &model.CrawlBatch{
		ID: "batch-1",
		Records: []model.CrawledRecord{
			{
				Domain:       "acme.com",
				PhoneNumbers: []string{"(555) 010-2000"},
				SocialLinks:  model.SocialLinks{Facebook: "https://facebook.com/acmewidgets"},
				Success:      true,
			},
			{Domain: "orbit.io", Error: "local_http: status 404"},
		},
		Duration: 250 * time.Millisecond,
	}
}
