// Package loader reads the company catalog, the website list and query
// samples from CSV or XLSX files.
package loader

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/company-match/internal/model"
)

// Column headers.
const (
	ColDomain         = "domain"
	ColCommercialName = "company_commercial_name"
	ColLegalName      = "company_legal_name"
	ColAllNames       = "company_all_available_names"

	ColInputName     = "input name"
	ColInputPhone    = "input phone"
	ColInputWebsite  = "input website"
	ColInputFacebook = "input_facebook"
)

// LoadCompanies reads catalog records in file order. Rows without a domain
// are skipped and a repeated domain keeps its first row.
func LoadCompanies(ctx context.Context, path string) ([]model.CompanyRecord, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(ColDomain, ColCommercialName, ColLegalName, ColAllNames)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(t.rows))
	records := make([]model.CompanyRecord, 0, len(t.rows))
	skipped := 0
	for _, row := range t.rows {
		domain := strings.ToLower(cell(row, cols[0]))
		if domain == "" {
			skipped++
			continue
		}
		if _, dup := seen[domain]; dup {
			skipped++
			continue
		}
		seen[domain] = struct{}{}
		records = append(records, model.CompanyRecord{
			Domain:         domain,
			CommercialName: cell(row, cols[1]),
			LegalName:      cell(row, cols[2]),
			AllNames:       cell(row, cols[3]),
		})
	}

	zap.L().Info("loader: companies loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

// LoadWebsites reads the domain column, lower-cased and deduplicated in file order.
func LoadWebsites(ctx context.Context, path string) ([]string, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	col, err := t.column(ColDomain)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(t.rows))
	var domains []string
	for _, row := range t.rows {
		d := strings.ToLower(cell(row, col))
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}

	zap.L().Info("loader: websites loaded", zap.String("path", path), zap.Int("domains", len(domains)))
	return domains, nil
}

// LoadQueries reads query samples. Every row yields a query, even an empty one.
func LoadQueries(ctx context.Context, path string) ([]model.MatchQuery, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(ColInputName, ColInputPhone, ColInputWebsite, ColInputFacebook)
	if err != nil {
		return nil, err
	}

	queries := make([]model.MatchQuery, 0, len(t.rows))
	for _, row := range t.rows {
		queries = append(queries, model.MatchQuery{
			Name:     cell(row, cols[0]),
			Phone:    cell(row, cols[1]),
			Website:  cell(row, cols[2]),
			Facebook: cell(row, cols[3]),
		})
	}

	zap.L().Info("loader: queries loaded", zap.String("path", path), zap.Int("queries", len(queries)))
	return queries, nil
}
