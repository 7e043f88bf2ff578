package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-match/internal/company"
	"github.com/sells-group/company-match/internal/model"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	oldCfg := cfg
	t.Cleanup(func() {
		cfg = oldCfg
		configFile = ""
		resolveQuery = model.MatchQuery{}
		crawlResolve = false
		bulkCrawl, bulkOutput, bulkLimit = false, "", 0
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"serve", "resolve", "crawl", "bulk"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "company-match", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)

	for _, name := range []string{"name", "website", "phone", "facebook"} {
		assert.NotNil(t, resolveCmd.Flags().Lookup(name), "resolve should have --%s", name)
	}
	assert.NotNil(t, crawlCmd.Flags().Lookup("resolve"))
	for _, name := range []string{"crawl", "output", "limit"} {
		assert.NotNil(t, bulkCmd.Flags().Lookup(name), "bulk should have --%s", name)
	}
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: NOT_A_LEVEL\n"), 0o644))
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestRootCmd_PersistentPreRunE_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("invalid: [yaml: bad"), 0o644))
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	setupWorkdir(t, websitesCSV)

	alt := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(alt, []byte("log:\n  level: error\ndata:\n  companies_path: missing.csv\n"), 0o644))

	_, err := execute(t, "--config", alt, "resolve", "--website", "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
	assert.Equal(t, "missing.csv", cfg.Data.CompaniesPath)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "resolve", "--website", "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRootCmd_PersistentPostRun_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		rootCmd.PersistentPostRun(rootCmd, nil)
	})
}

func TestResolveCommand(t *testing.T) {
	setupWorkdir(t, websitesCSV)

	out, err := execute(t, "resolve", "--website", "acme.com")
	require.NoError(t, err)

	var res model.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "acme.com", res.Company.Domain)
	assert.Equal(t, model.ConfidenceHigh, res.MatchScore.Confidence)
}

func TestResolveCommand_NoMatch(t *testing.T) {
	setupWorkdir(t, websitesCSV)

	_, err := execute(t, "resolve", "--name", "Qqqq Zzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), msgNoMatch)
}

func TestResolveCommand_EmptyQuery(t *testing.T) {
	setupWorkdir(t, websitesCSV)

	_, err := execute(t, "resolve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")
}

func TestResolveCommand_MissingCatalog(t *testing.T) {
	setupWorkdir(t, websitesCSV)
	require.NoError(t, os.Remove("companies.csv"))

	_, err := execute(t, "resolve", "--name", "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestBulkCommand(t *testing.T) {
	setupWorkdir(t, websitesCSV)
	outPath := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "bulk", "--limit", "2", "--output", outPath)
	require.NoError(t, err)

	var sum company.BulkSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 2, sum.MatchedCount)
	assert.InDelta(t, 100.0, sum.MatchRate, 1e-9)
	assert.Len(t, sum.SampleResults, 2)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var full company.BulkReport
	require.NoError(t, json.Unmarshal(data, &full))
	require.Len(t, full.Results, 2)
	assert.Equal(t, "orbit.io", full.Results[1].Match.Company.Domain)
}

func TestBulkCommand_MissingQueries(t *testing.T) {
	setupWorkdir(t, websitesCSV)
	require.NoError(t, os.Remove("queries.csv"))

	_, err := execute(t, "bulk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load queries")
}

func TestCrawlCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>Call (555) 777-1212</p></body></html>`))
	}))
	defer srv.Close()

	setupWorkdir(t, fmt.Sprintf("domain\n%s\n", srv.URL))

	out, err := execute(t, "crawl", "--resolve")
	require.NoError(t, err)

	var got struct {
		Analytics struct {
			TotalWebsites       int     `json:"total_websites"`
			SuccessfullyCrawled int     `json:"successfully_crawled"`
			FillRates           struct {
				PhoneNumbers float64 `json:"phone_numbers"`
			} `json:"fill_rates"`
		} `json:"analytics"`
		Bulk *company.BulkSummary `json:"bulk"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Analytics.TotalWebsites)
	assert.Equal(t, 1, got.Analytics.SuccessfullyCrawled)
	assert.InDelta(t, 100.0, got.Analytics.FillRates.PhoneNumbers, 1e-9)
	require.NotNil(t, got.Bulk)
	assert.Equal(t, 3, got.Bulk.Total)
}
